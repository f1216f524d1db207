package types

type BasePageData struct {
	Title  string
	Notice string
	Error  string
}

type HomePageData struct {
	BasePageData

	// AutoRefresh makes the page poll while a request is in flight.
	AutoRefresh bool

	Search       SearchPanelData
	Verification *VerificationModalData
}

type SearchPanelData struct {
	Query   string
	Results []SchemeSummary
	Loading bool
	Failed  bool
	// NoMatches is set once a search for Query finished with nothing to show.
	NoMatches bool
}

type VerificationModalData struct {
	Scheme SchemeSummary
	Step   string
	Form   UserProfileForm
	Error  string
	Alert  string
	Result *VerificationResult

	Genders      []Gender
	CasteOptions []CasteOption
}
