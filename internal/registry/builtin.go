package registry

// Provider datasets the built-in widgets draw from.
const (
	namespaceCore = "CORE"
	namespaceEdge = "EDGE"

	datasetStockStats = "STOCK_STATS_US"
	datasetQuote      = "VNX_QUOTE"
)

// quoteColumns is shared by the single-symbol and board variants.
func quoteColumns() []ColumnSpec {
	return []ColumnSpec{
		{Name: "symbol", Label: "Symbol", Type: ColumnString, Field: "vnxSymbol"},
		{Name: "price", Label: "Price", Type: ColumnNumber, Field: "vnxPrice"},
		{Name: "bid", Label: "Bid", Type: ColumnNumber, Field: "vnxBidPrice"},
		{Name: "bid_size", Label: "Bid Size", Type: ColumnNumber, Field: "vnxBidSize"},
		{Name: "ask", Label: "Ask", Type: ColumnNumber, Field: "vnxAskPrice"},
		{Name: "ask_size", Label: "Ask Size", Type: ColumnNumber, Field: "vnxAskSize"},
		{Name: "open", Label: "Open", Type: ColumnNumber, Field: "vnxOpenPrice"},
		{Name: "high", Label: "High", Type: ColumnNumber, Field: "vnxHighPrice"},
		{Name: "low", Label: "Low", Type: ColumnNumber, Field: "vnxLowPrice"},
		{Name: "close", Label: "Prev Close", Type: ColumnNumber, Field: "vnxClosePrice"},
		{Name: "volume", Label: "Volume", Type: ColumnNumber, Field: "vnxVolume"},
		{Name: "updated_at", Label: "Updated", Type: ColumnDate, Field: "vnxTimestamp"},
	}
}

// BuiltIn returns the registry of shipped widgets.
func BuiltIn() *Registry {
	r := New()

	r.MustRegister(Descriptor{
		ID:          "quote",
		Name:        "Quote",
		Description: "Real-time quote for a single symbol",
		Category:    "Equities",
		Type:        TypeTable,
		Grid:        Grid{W: 12, H: 4},
		Params: []ParamSpec{
			{
				Name:        "symbol",
				Label:       "Symbol",
				Description: "Ticker to quote",
				Type:        ParamString,
				Required:    true,
			},
			{
				Name:        "price_type",
				Label:       "Price Type",
				Description: "Quote pricing mode",
				Type:        ParamEnum,
				Default:     "real_time",
				Choices:     []string{"real_time", "delayed", "previous"},
			},
		},
		Columns: quoteColumns(),
		Source: &Binding{
			Namespace:    namespaceEdge,
			Dataset:      datasetQuote,
			SymbolsParam: "symbol",
			Query:        map[string]string{"priceType": "price_type"},
			Static:       map[string]string{"last": "1"},
		},
	})

	r.MustRegister(Descriptor{
		ID:          "quote_board",
		Name:        "Quote Board",
		Description: "Side-by-side quotes for a list of symbols",
		Category:    "Equities",
		Type:        TypeTable,
		Grid:        Grid{W: 20, H: 8},
		Params: []ParamSpec{
			{
				Name:        "symbols",
				Label:       "Symbols",
				Description: "Comma-separated tickers",
				Type:        ParamString,
				Required:    true,
			},
		},
		Columns: quoteColumns(),
		Source: &Binding{
			Namespace:    namespaceEdge,
			Dataset:      datasetQuote,
			SymbolsParam: "symbols",
			Static:       map[string]string{"last": "1"},
		},
	})

	r.MustRegister(Descriptor{
		ID:          "stock_stats",
		Name:        "Stock Statistics",
		Description: "Key US equity statistics for a symbol",
		Category:    "Equities",
		Type:        TypeMetric,
		Grid:        Grid{W: 20, H: 9},
		Params: []ParamSpec{
			{
				Name:        "symbol",
				Label:       "Symbol",
				Description: "Ticker to look up",
				Type:        ParamString,
				Required:    true,
				Default:     "AAPL",
			},
			{
				Name:        "as_of",
				Label:       "As Of",
				Description: "Point-in-time date, latest when empty",
				Type:        ParamDate,
			},
		},
		Columns: []ColumnSpec{
			{Name: "company", Label: "Company", Type: ColumnString, Field: "issuerName"},
			{Name: "symbol", Label: "Symbol", Type: ColumnString, Field: "symbol"},
			{Name: "pe_ratio", Label: "P/E (TTM)", Type: ColumnNumber, Field: "peRatioTtm"},
			{Name: "eps", Label: "EPS (TTM)", Type: ColumnNumber, Field: "epsTtm"},
			{Name: "beta", Label: "Beta", Type: ColumnNumber, Field: "beta"},
			{Name: "week52_high", Label: "52w High", Type: ColumnNumber, Field: "52weekHigh"},
			{Name: "week52_high_date", Label: "52w High Date", Type: ColumnDate, Field: "52weekHighDate"},
			{Name: "week52_low", Label: "52w Low", Type: ColumnNumber, Field: "52weekLow"},
			{Name: "week52_low_date", Label: "52w Low Date", Type: ColumnDate, Field: "52weekLowDate"},
			{Name: "week52_change", Label: "52w Change", Type: ColumnNumber, Field: "52weekChange"},
			{Name: "ytd_change", Label: "YTD Change", Type: ColumnNumber, Field: "ytdChange"},
			{Name: "ma_50", Label: "50d MA", Type: ColumnNumber, Field: "day50MovingAverage"},
			{Name: "ma_200", Label: "200d MA", Type: ColumnNumber, Field: "day200MovingAverage"},
			{Name: "avg_volume_30d", Label: "Avg Volume (30d)", Type: ColumnNumber, Field: "avg30DayVolume"},
			{Name: "shares_outstanding", Label: "Shares Outstanding", Type: ColumnNumber, Field: "sharesOutstanding"},
		},
		Source: &Binding{
			Namespace:    namespaceCore,
			Dataset:      datasetStockStats,
			SymbolsParam: "symbol",
			Query:        map[string]string{"on": "as_of"},
			Static:       map[string]string{"last": "1"},
		},
	})

	r.MustRegister(Descriptor{
		ID:          "stock_history",
		Name:        "Moving Averages",
		Description: "Daily moving averages and volume history for a symbol",
		Category:    "Equities",
		Type:        TypeTable,
		Grid:        Grid{W: 20, H: 9},
		Params: []ParamSpec{
			{
				Name:        "symbol",
				Label:       "Symbol",
				Description: "Ticker to chart",
				Type:        ParamString,
				Required:    true,
				Default:     "AAPL",
			},
			{
				Name:        "days",
				Label:       "Days",
				Description: "Trading days of history",
				Type:        ParamNumber,
				Default:     "30",
				Min:         f64(1),
				Max:         f64(365),
			},
		},
		Columns: []ColumnSpec{
			{Name: "date", Label: "Date", Type: ColumnDate, Field: "date"},
			{Name: "ma_50", Label: "50d MA", Type: ColumnNumber, Field: "day50MovingAverage"},
			{Name: "ma_200", Label: "200d MA", Type: ColumnNumber, Field: "day200MovingAverage"},
			{Name: "avg_volume_30d", Label: "Avg Volume (30d)", Type: ColumnNumber, Field: "avg30DayVolume"},
		},
		Source: &Binding{
			Namespace:    namespaceCore,
			Dataset:      datasetStockStats,
			SymbolsParam: "symbol",
			Query:        map[string]string{"last": "days"},
		},
	})

	r.MustRegister(Descriptor{
		ID:          "hello_world",
		Name:        "Hello World",
		Description: "Connectivity check widget",
		Category:    "Demo",
		Type:        TypeMarkdown,
		Grid:        Grid{W: 12, H: 4},
		Params: []ParamSpec{
			{
				Name:        "name",
				Label:       "Name",
				Description: "Who to greet",
				Type:        ParamString,
				Default:     "world",
			},
		},
		Template: "# Hello, {{.name}}!\n\nThe connector is reachable and serving widget data.",
	})

	return r
}

func f64(v float64) *float64 { return &v }
