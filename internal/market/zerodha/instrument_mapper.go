package zerodha

import (
	"sync"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// instrumentMapper manages bidirectional mapping between trading symbols and
// instrument tokens for one exchange.
type instrumentMapper struct {
	symbolToToken map[string]int
	tokenToSymbol map[int]string
	names         map[string]string
	loaded        bool
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]int),
		tokenToSymbol: make(map[int]string),
		names:         make(map[string]string),
	}
}

// load replaces all mappings with the equity instruments in list.
func (im *instrumentMapper) load(list kiteconnect.Instruments) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken = make(map[string]int, len(list))
	im.tokenToSymbol = make(map[int]string, len(list))
	im.names = make(map[string]string, len(list))
	for _, inst := range list {
		if inst.InstrumentType != "" && inst.InstrumentType != "EQ" {
			continue
		}
		im.symbolToToken[inst.Tradingsymbol] = inst.InstrumentToken
		im.tokenToSymbol[inst.InstrumentToken] = inst.Tradingsymbol
		im.names[inst.Tradingsymbol] = inst.Name
	}
	im.loaded = true
}

func (im *instrumentMapper) isLoaded() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.loaded
}

func (im *instrumentMapper) getToken(symbol string) (int, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	token, exists := im.symbolToToken[symbol]
	return token, exists
}

func (im *instrumentMapper) getSymbol(token int) string {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.tokenToSymbol[token]
}

func (im *instrumentMapper) getName(symbol string) string {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.names[symbol]
}
