package server

import (
	"net/http"

	"schemebot/internal/search"
	"schemebot/internal/verify"
	"schemebot/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		s.logger.Error("session missing from request context")
		s.internalServerError(w)
		return
	}

	data := types.HomePageData{
		BasePageData: types.BasePageData{
			Title:  "Find Schemes You Qualify For",
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
		Search: searchPanel(sess.Search.State()),
	}

	if v := sess.Verification(); v != nil {
		data.Verification = verificationModal(v)
	}

	data.AutoRefresh = data.Search.Loading ||
		(data.Verification != nil && data.Verification.Step == string(verify.StepLoading))

	if err := s.renderTemplate(w, "page.home", &data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func searchPanel(state search.State) types.SearchPanelData {
	return types.SearchPanelData{
		Query:     state.Query,
		Results:   state.Results,
		Loading:   state.Loading,
		Failed:    state.Failed,
		NoMatches: state.Searched() && !state.Failed && len(state.Results) == 0,
	}
}

func verificationModal(v *verify.Controller) *types.VerificationModalData {
	view := v.View()

	return &types.VerificationModalData{
		Scheme:       view.Scheme,
		Step:         string(view.Step),
		Form:         view.Form,
		Error:        view.Error,
		Alert:        v.TakeAlert(),
		Result:       view.Result,
		Genders:      types.Genders,
		CasteOptions: types.CasteOptions,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
