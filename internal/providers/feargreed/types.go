package feargreed

// cnnGraphData is the subset of the CNN graphdata payload that carries the
// current reading.
type cnnGraphData struct {
	FearAndGreed struct {
		Score         float64 `json:"score"`
		Rating        string  `json:"rating"`
		Timestamp     string  `json:"timestamp"`
		PreviousClose float64 `json:"previous_close"`
	} `json:"fear_and_greed"`
}

// altFNGResponse is the alternative.me /fng/ payload.
type altFNGResponse struct {
	Name string `json:"name"`
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}
