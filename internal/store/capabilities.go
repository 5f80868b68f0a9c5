package store

// Capability says whether an optional collaborator can be used.
type Capability int

const (
	CapabilityAbsent Capability = iota
	CapabilityPresent
)

func (c Capability) String() string {
	if c == CapabilityPresent {
		return "present"
	}
	return "absent"
}

func (c Capability) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func capability(ok bool) Capability {
	if ok {
		return CapabilityPresent
	}
	return CapabilityAbsent
}

// Capabilities is resolved once at startup and handed to the orchestrator.
type Capabilities struct {
	Market Capability `json:"market"`
	News   Capability `json:"news"`
	LLM    Capability `json:"llm"`
	Redis  Capability `json:"redis"`
}

func (c *Config) Capabilities() Capabilities {
	return Capabilities{
		Market: capability(c.marketReady()),
		News:   capability(len(c.NewsSources()) > 0),
		LLM:    capability(c.LLM.Provider != LLMNone && c.LLMKey() != ""),
		Redis:  capability(c.Cache.Backend == CacheRedis || c.Cache.Backend == CacheLayered),
	}
}

func (c *Config) marketReady() bool {
	switch c.Market.Provider {
	case MarketPolygon:
		return c.Secrets.PolygonAPIKey != ""
	case MarketKite:
		return c.Secrets.KiteAPIKey != "" && c.Secrets.KiteAccessToken != ""
	default:
		return true
	}
}

// NewsSources lists the configured sources that have the credentials they need, in order.
func (c *Config) NewsSources() []string {
	out := make([]string, 0, len(c.News.Sources))
	for _, s := range c.News.Sources {
		switch s {
		case NewsSourceNewsAPI:
			if c.Secrets.NewsAPIKey == "" {
				continue
			}
		case NewsSourcePolygon:
			if c.Secrets.PolygonAPIKey == "" {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
