package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"schemebot/internal/verify"
	"schemebot/pkg/types"
)

type searchForm struct {
	Query string `form:"query"`
}

type schemeSelectionForm struct {
	SchemeName string `form:"scheme_name"`
}

func (s *Service) handlePostSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		s.internalServerError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	var f searchForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode search form")
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	done, issued := sess.Search.Search(f.Query)
	if issued {
		s.settle(r, done)
	}

	s.redirectHome(w, r)
}

func (s *Service) handlePostVerifyOpen(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		s.internalServerError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	var f schemeSelectionForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode scheme selection")
		s.redirectWithError(w, r, "invalid scheme selection")
		return
	}

	if !required(f.SchemeName) {
		s.redirectWithError(w, r, "choose a scheme to check")
		return
	}

	// only schemes from the visitor's current results can be verified
	scheme, ok := sess.Search.State().Lookup(f.SchemeName)
	if !ok {
		s.redirectWithError(w, r, "that scheme is no longer in your results, search again")
		return
	}

	sess.OpenVerification(scheme)
	s.redirectHome(w, r)
}

func (s *Service) handlePostVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		s.internalServerError(w)
		return
	}

	v := sess.Verification()
	if v == nil {
		s.redirectHome(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	var profile types.UserProfileForm
	if err := decoder.Decode(&profile, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode profile form")
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	done, err := v.Submit(profile)
	switch {
	case err == nil:
		s.settle(r, done)
	case errors.Is(err, types.ErrInvalidGender), errors.Is(err, types.ErrInvalidCaste):
		// the modal re-renders with the field error
	case errors.Is(err, verify.ErrNotAccepting), errors.Is(err, verify.ErrClosed):
		s.logger.WithField("verification_id", v.ID()).Debug("ignoring duplicate submission")
	default:
		s.logger.WithError(err).Error("failed to submit verification")
	}

	s.redirectHome(w, r)
}

func (s *Service) handlePostVerifyClose(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		s.internalServerError(w)
		return
	}

	sess.CloseVerification()
	s.redirectHome(w, r)
}

// settle gives a fresh request a short window to finish so fast answers skip
// the loading page.
func (s *Service) settle(r *http.Request, done <-chan struct{}) {
	if s.settleWindow <= 0 {
		return
	}

	timer := time.NewTimer(s.settleWindow)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
	case <-r.Context().Done():
	}
}

func required(v string) bool {
	return strings.TrimSpace(v) != ""
}
