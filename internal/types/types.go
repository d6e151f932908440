// Package types provides the messages exchanged with the browser and the
// status types shared across the site server.
package types

import (
	"github.com/oszuidwest/hotelsite/internal/slider"
	"github.com/oszuidwest/hotelsite/internal/widget"
)

// Server to browser message types.
const (
	MessageView     = "view"
	MessageNavigate = "navigate"
	MessageError    = "error"
)

// HeaderView is the rendered sticky header state.
type HeaderView struct {
	Scrolled bool `json:"scrolled"`
}

// PageView is the complete widget state of one open page.
type PageView struct {
	Type      string                 `json:"type"`
	Page      string                 `json:"page"`
	Body      []string               `json:"body"`
	Header    HeaderView             `json:"header"`
	Preloader widget.PreloaderView   `json:"preloader"`
	Slider    slider.View            `json:"slider"`
	Menu      widget.MenuView        `json:"menu"`
	Modal     widget.ModalView       `json:"modal"`
	FAQ       widget.AccordionView   `json:"faq"`
	Rooms     *widget.RoomFilterView `json:"rooms,omitempty"`
	Revealed  []string               `json:"revealed"`
	Fallbacks map[string]string      `json:"fallbacks,omitempty"` // card image -> replacement
}

// NavigateMessage tells the browser to follow a link.
type NavigateMessage struct {
	Type string `json:"type"`
	Href string `json:"href"`
}

// ErrorMessage reports a rejected command.
type ErrorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Message string `json:"message"`
}

// VersionInfo contains version comparison data.
type VersionInfo struct {
	Current     string `json:"current"`
	Latest      string `json:"latest,omitempty"`
	UpdateAvail bool   `json:"update_available"`
	Commit      string `json:"commit,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
}

// Health is the /healthz response body.
type Health struct {
	Status   string      `json:"status"`
	Sessions int         `json:"sessions"`
	Version  VersionInfo `json:"version"`
}
