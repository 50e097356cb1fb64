// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorTeal  = lipgloss.Color("#2CD7C7")
	colorSlate = lipgloss.Color("#2C4A54")
	colorError = lipgloss.Color("#E74C3C")
)

// styles renders status text. The zero value renders plain text.
type styles struct {
	color bool

	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

// stylesFor enables color only when w is a terminal and NO_COLOR is unset.
func stylesFor(w io.Writer) styles {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return styles{}
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return styles{}
	}
	return styles{
		color: true,
		title: lipgloss.NewStyle().Bold(true).Foreground(colorTeal),
		ok:    lipgloss.NewStyle().Foreground(colorTeal),
		fail:  lipgloss.NewStyle().Foreground(colorError),
		muted: lipgloss.NewStyle().Foreground(colorSlate),
	}
}

// Table renders rows in aligned columns under a styled header.
func (s styles) Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) && lipgloss.Width(c) > widths[i] {
				widths[i] = lipgloss.Width(c)
			}
		}
	}

	var b strings.Builder
	line := func(cells []string, render func(string) string) {
		for i, c := range cells {
			b.WriteString(render(c))
			if i < len(cells)-1 && i < len(widths) {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(c)+2))
			}
		}
		b.WriteString("\n")
	}
	line(header, s.Title)
	for _, r := range rows {
		line(r, func(c string) string { return c })
	}
	return b.String()
}

func (s styles) Title(text string) string {
	if !s.color {
		return text
	}
	return s.title.Render(text)
}

func (s styles) OK(text string) string {
	if !s.color {
		return text
	}
	return s.ok.Render(text)
}

func (s styles) Fail(text string) string {
	if !s.color {
		return text
	}
	return s.fail.Render(text)
}

func (s styles) Muted(text string) string {
	if !s.color {
		return text
	}
	return s.muted.Render(text)
}
