// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package highlight guesses the language of command snippets and renders
// them as styled spans for suggestion lists. Shebangs win, then a few
// cheap structural checks, then go-enry's Bayesian classifier (which,
// unlike Chroma's lexers.Analyse, works from content alone).
package highlight

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Result is one language guess.
type Result struct {
	Name   string // lowercase language name, e.g. "go"
	Method string // "shebang", "heuristic" or "classifier"
}

// Infer guesses the language of a block of lines.
func Infer(lines []string) Result {
	trimmed := make([]string, 0, len(lines))
	for _, ln := range lines {
		if strings.TrimSpace(ln) != "" {
			trimmed = append(trimmed, ln)
		}
	}
	if len(trimmed) == 0 {
		return Result{}
	}
	content := []byte(strings.Join(trimmed, "\n"))

	if strings.HasPrefix(strings.TrimSpace(trimmed[0]), "#!") {
		if langs := enry.GetLanguagesByShebang("", content, nil); len(langs) > 0 {
			return Result{Name: strings.ToLower(langs[0]), Method: "shebang"}
		}
	}

	if name := heuristicGuess(trimmed); name != "" {
		return Result{Name: name, Method: "heuristic"}
	}

	if langs := enry.GetLanguagesByClassifier("", content, nil); len(langs) > 0 {
		return Result{Name: strings.ToLower(langs[0]), Method: "classifier"}
	}
	return Result{}
}

// heuristicGuess catches languages the classifier is unreliable on for
// short snippets. Go in particular scores poorly from a few lines.
func heuristicGuess(lines []string) string {
	var hasPackage, hasFunc, hasWalrus bool
	var diffMarks int
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if strings.HasPrefix(t, "package ") {
			hasPackage = true
		}
		if strings.HasPrefix(t, "func ") || strings.Contains(t, "func(") {
			hasFunc = true
		}
		if strings.Contains(t, ":=") {
			hasWalrus = true
		}
		if strings.HasPrefix(ln, "+++ ") || strings.HasPrefix(ln, "--- ") ||
			strings.HasPrefix(ln, "@@ ") || strings.HasPrefix(ln, "diff --git") {
			diffMarks++
		}
	}
	if hasPackage && (hasFunc || hasWalrus) {
		return "go"
	}
	if diffMarks >= 2 {
		return "diff"
	}
	return ""
}
