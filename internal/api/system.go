/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"

	"github.com/treasureakintoye/ambradio-dashboard/internal/version"
)

// SetVersionChecker attaches the background update checker. Optional;
// without it the version endpoint reports only the running version.
func (a *API) SetVersionChecker(checker *version.Checker) {
	a.versionChecker = checker
}

func (a *API) handleSystemVersion(w http.ResponseWriter, r *http.Request) {
	if a.versionChecker == nil {
		writeJSON(w, http.StatusOK, version.UpdateInfo{CurrentVersion: version.Version})
		return
	}
	writeJSON(w, http.StatusOK, a.versionChecker.Info())
}
