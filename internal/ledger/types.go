package ledger

import "time"

// Transfer is one row of the ledger.
type Transfer struct {
	ID        int64     `json:"id"`
	BlockTime time.Time `json:"block_time"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Token     string    `json:"token"`
	Amount    float64   `json:"amount"`
	TxHash    string    `json:"tx_hash"`
}

// SeriesPoint is one bucket of a time series. Bucket is the UTC start of
// the bucket in RFC 3339 form.
type SeriesPoint struct {
	Bucket string  `json:"bucket"`
	Count  int64   `json:"count"`
	Volume float64 `json:"volume"`
}

type TokenStat struct {
	Token  string  `json:"token"`
	Count  int64   `json:"count"`
	Volume float64 `json:"volume"`
}

// TokenActivity is one token's totals plus its daily series.
type TokenActivity struct {
	TokenStat
	Daily []SeriesPoint `json:"daily"`
}

type SankeyNode struct {
	Name string `json:"name"`
}

// SankeyLink references nodes by their index in SankeyGraph.Nodes.
type SankeyLink struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

type SankeyGraph struct {
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

// Flow is the total moved from one address to another.
type Flow struct {
	From   string
	To     string
	Volume float64
}
