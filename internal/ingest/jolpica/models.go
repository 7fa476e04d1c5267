package jolpica

// Wire types for the Ergast-compatible jolpica API. Only the fields the
// parser consumes are declared.

type lapsResponse struct {
	MRData struct {
		RaceTable struct {
			Races []struct {
				Laps []wireLap `json:"Laps"`
			} `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type wireLap struct {
	Number  string       `json:"number"`
	Timings []wireTiming `json:"Timings"`
}

type wireTiming struct {
	DriverID string `json:"driverId"`
	Position string `json:"position"`
	Time     string `json:"time"`
}

type resultsResponse struct {
	MRData struct {
		RaceTable struct {
			Races []struct {
				Results       []wireResult `json:"Results"`
				SprintResults []wireResult `json:"SprintResults"`
			} `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type wireResult struct {
	Position     string `json:"position"`
	PositionText string `json:"positionText"`
	Grid         string `json:"grid"`
	Laps         string `json:"laps"`
	Status       string `json:"status"`
	Driver       struct {
		DriverID   string `json:"driverId"`
		Code       string `json:"code"`
		GivenName  string `json:"givenName"`
		FamilyName string `json:"familyName"`
	} `json:"Driver"`
	Constructor struct {
		Name string `json:"name"`
	} `json:"Constructor"`
}
