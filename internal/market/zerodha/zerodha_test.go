package zerodha

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"

	"stock-analysis-agent/internal/market"
)

type fakeKite struct {
	instrumentCalls int
	instrumentsErr  error
	history         []kiteconnect.HistoricalData
	gotToken        int
	gotInterval     string
}

func (f *fakeKite) GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error) {
	f.instrumentCalls++
	if f.instrumentsErr != nil {
		return nil, f.instrumentsErr
	}
	return kiteconnect.Instruments{
		{InstrumentToken: 738561, Tradingsymbol: "RELIANCE", Name: "RELIANCE INDUSTRIES", InstrumentType: "EQ", Exchange: exchange},
		{InstrumentToken: 2953217, Tradingsymbol: "TCS", Name: "TATA CONSULTANCY SERV LT", InstrumentType: "EQ", Exchange: exchange},
		{InstrumentToken: 111, Tradingsymbol: "NIFTY24JUNFUT", Name: "NIFTY", InstrumentType: "FUT", Exchange: exchange},
	}, nil
}

func (f *fakeKite) GetHistoricalData(token int, interval string, _, _ time.Time, _, _ bool) ([]kiteconnect.HistoricalData, error) {
	f.gotToken, f.gotInterval = token, interval
	return f.history, nil
}

func (f *fakeKite) GetQuote(instruments ...string) (kiteconnect.Quote, error) {
	var q kiteconnect.Quote
	err := json.Unmarshal([]byte(`{"NSE:RELIANCE":{"instrument_token":738561,"last_price":2950.5,"volume":1234567}}`), &q)
	return q, err
}

func day(d int) models.Time {
	return models.Time{Time: time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)}
}

func TestHistoryMapsBars(t *testing.T) {
	kite := &fakeKite{history: []kiteconnect.HistoricalData{
		{Date: day(3), Open: 10, High: 12, Low: 9, Close: 11, Volume: 500},
		{Date: day(2), Open: 9, High: 10, Low: 8, Close: 10, Volume: 400},
	}}
	p := newProvider(kite, "NSE")

	candles, err := p.History(context.Background(), "RELIANCE", 365)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 738561, kite.gotToken)
	assert.Equal(t, "day", kite.gotInterval)
	assert.Equal(t, 10.0, candles[0].Close, "oldest first")
	assert.Equal(t, 500.0, candles[1].Vol)
}

func TestInstrumentsLoadedOnce(t *testing.T) {
	kite := &fakeKite{history: []kiteconnect.HistoricalData{{Date: day(2), Close: 1}}}
	p := newProvider(kite, "")

	for i := 0; i < 3; i++ {
		_, err := p.History(context.Background(), "TCS", 30)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, kite.instrumentCalls)
	assert.Equal(t, "TCS", p.mapper.getSymbol(2953217))
}

func TestUnknownAndDerivativeSymbols(t *testing.T) {
	p := newProvider(&fakeKite{}, "NSE")

	_, err := p.History(context.Background(), "ACME", 30)
	assert.ErrorIs(t, err, market.ErrUnknownTicker)

	_, err = p.History(context.Background(), "NIFTY24JUNFUT", 30)
	assert.ErrorIs(t, err, market.ErrUnknownTicker, "only equities are mapped")
}

func TestInstrumentFailureIsRetried(t *testing.T) {
	kite := &fakeKite{instrumentsErr: errors.New("token expired")}
	p := newProvider(kite, "NSE")

	_, err := p.History(context.Background(), "TCS", 30)
	require.Error(t, err)

	kite.instrumentsErr = nil
	kite.history = []kiteconnect.HistoricalData{{Date: day(2), Close: 1}}
	_, err = p.History(context.Background(), "TCS", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, kite.instrumentCalls)
}

func TestEmptyHistory(t *testing.T) {
	p := newProvider(&fakeKite{}, "NSE")
	_, err := p.History(context.Background(), "TCS", 30)
	assert.ErrorIs(t, err, market.ErrNoData)
}

func TestStockInfo(t *testing.T) {
	kite := &fakeKite{history: []kiteconnect.HistoricalData{
		{Date: day(2), High: 3000, Low: 2800, Close: 2900},
		{Date: day(3), High: 3100, Low: 2850, Close: 2950},
	}}
	p := newProvider(kite, "NSE")

	info, err := p.StockInfo(context.Background(), "RELIANCE")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE INDUSTRIES", info.LongName)
	assert.Equal(t, "India", info.Country)
	require.NotNil(t, info.RegularMarketPrice)
	assert.Equal(t, 2950.5, *info.RegularMarketPrice)
	assert.Equal(t, 1234567.0, *info.RegularMarketVolume)
	assert.Equal(t, 3100.0, *info.FiftyTwoWeekHigh)
	assert.Equal(t, 2800.0, *info.FiftyTwoWeekLow)
	assert.Equal(t, "N/A", info.ShortSummary)
}
