package sdk

/** Requests */

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Text string `json:"text"`
}

/** Responses */

// QueryResponse is the body of a successful POST /query. Response is empty when the
// service left the field out
type QueryResponse struct {
	Response string `json:"response"`
}

// QueryResult is a single answered row of a processed CSV file
type QueryResult struct {
	Query      string  `json:"query"`
	Response   string  `json:"response"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// BatchResponse is the body of a successful POST /process-csv
type BatchResponse struct {
	Results []QueryResult `json:"results"`
}

// ErrorResponse is the optional body of a failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
