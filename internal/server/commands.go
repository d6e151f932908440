package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oszuidwest/hotelsite/internal/types"
	"github.com/oszuidwest/hotelsite/internal/util"
)

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Command statuses recorded in the commands counter.
const (
	commandOK      = "ok"
	commandInvalid = "invalid"
	commandUnknown = "unknown"
)

// Limits on string fields sent by the browser.
const (
	maxKeyLength    = 32
	maxNavIDLength  = 64
	maxDetailLength = 128
)

type indexData struct {
	Index int `json:"index"`
}

type keyData struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
}

type touchData struct {
	StartX float64 `json:"start_x"`
	EndX   float64 `json:"end_x"`
}

type hoverData struct {
	Hovering bool `json:"hovering"`
}

type linkData struct {
	ID       string `json:"id"`
	Viewport int    `json:"viewport"`
}

type scrollData struct {
	Offset float64 `json:"offset"`
}

type modalData struct {
	Key   string `json:"key"`
	Image string `json:"image"`
	Alt   string `json:"alt"`
}

type backdropData struct {
	OnBackdrop bool `json:"on_backdrop"`
}

type filterData struct {
	Filter string `json:"filter"`
}

type revealData struct {
	ID    string  `json:"id"`
	Ratio float64 `json:"ratio"`
}

type viewportData struct {
	Width int `json:"width"`
}

// CommandHandler applies browser events to a page session.
type CommandHandler struct {
	metrics *Metrics
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(metrics *Metrics) *CommandHandler {
	return &CommandHandler{metrics: metrics}
}

// Handle applies cmd to page. Replies other than the page view, such as a
// navigation, are passed to send. Widgets that change report through the
// page's Updates channel.
func (h *CommandHandler) Handle(cmd WSCommand, page *PageSession, send func(any)) {
	err := h.dispatch(cmd, page, send)
	status := commandOK
	switch {
	case errors.Is(err, errUnknownCommand):
		status = commandUnknown
		slog.Warn("unknown WebSocket command type", "type", cmd.Type)
	case err != nil:
		status = commandInvalid
		slog.Warn("rejected WebSocket command", "type", cmd.Type, "error", err)
		send(types.ErrorMessage{Type: types.MessageError, Command: cmd.Type, Message: err.Error()})
	}
	h.metrics.Commands.WithLabelValues(commandLabel(cmd.Type, status), status).Inc()
}

var errUnknownCommand = errors.New("unknown command")

// commandLabel keeps arbitrary client input out of the metric labels.
func commandLabel(cmdType, status string) string {
	if status == commandUnknown {
		return "other"
	}
	return cmdType
}

func (h *CommandHandler) dispatch(cmd WSCommand, p *PageSession, send func(any)) error {
	switch cmd.Type {
	case "slider.prev":
		p.slider.OnPrevious()
	case "slider.next":
		p.slider.OnNext()
	case "slider.select":
		var d indexData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		p.slider.OnSelect(d.Index)
	case "slider.key":
		var d keyData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		if verr := util.ValidateMaxLength("key", d.Key, maxKeyLength); verr != nil {
			return verr
		}
		p.slider.OnKey(d.Index, d.Key)
	case "slider.touch":
		var d touchData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		p.slider.OnTouch(d.StartX, d.EndX)
	case "slider.hover":
		var d hoverData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		p.slider.OnHoverChange(d.Hovering)

	case "menu.toggle":
		p.menu.Toggle()
		p.markDirty()
	case "menu.link":
		return h.handleMenuLink(cmd, p, send)
	case "header.scroll":
		var d scrollData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		if p.header.Scroll(d.Offset) {
			p.markDirty()
		}

	case "modal.open":
		return h.handleModalOpen(cmd, p)
	case "modal.close":
		p.modal.Close()
		p.markDirty()
	case "modal.backdrop":
		var d backdropData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		p.modal.Click(d.OnBackdrop)
		p.markDirty()

	case "accordion.toggle":
		var d indexData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		if !p.faq.Toggle(d.Index) {
			return fmt.Errorf("no FAQ entry %d", d.Index)
		}
		p.markDirty()
	case "rooms.filter":
		var d filterData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		if p.rooms == nil {
			return fmt.Errorf("page %s has no room filter", p.name)
		}
		if !p.rooms.Select(d.Filter) {
			return fmt.Errorf("unknown room filter %q", d.Filter)
		}
		p.markDirty()
	case "reveal":
		var d revealData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		if verr := util.ValidateMaxLength("id", d.ID, maxNavIDLength); verr != nil {
			return verr
		}
		if p.reveal.Observe(d.ID, d.Ratio) {
			p.markDirty()
		}
	case "viewport":
		var d viewportData
		if err := decode(cmd, &d); err != nil {
			return err
		}
		if verr := util.ValidateRange("width", d.Width, 1, 100000); verr != nil {
			return verr
		}
		p.SetViewport(d.Width)
	default:
		return errUnknownCommand
	}
	return nil
}

func (h *CommandHandler) handleMenuLink(cmd WSCommand, p *PageSession, send func(any)) error {
	var d linkData
	if err := decode(cmd, &d); err != nil {
		return err
	}
	if verr := util.ValidateMaxLength("id", d.ID, maxNavIDLength); verr != nil {
		return verr
	}
	href, ok := p.navHref(d.ID)
	if !ok {
		return fmt.Errorf("unknown link %q", d.ID)
	}

	viewport := d.Viewport
	if viewport <= 0 {
		viewport = p.Viewport()
	} else {
		p.SetViewport(viewport)
	}

	suppressed := p.menu.Link(d.ID, viewport)
	p.markDirty()
	if !suppressed {
		send(types.NavigateMessage{Type: types.MessageNavigate, Href: href})
	}
	return nil
}

func (h *CommandHandler) handleModalOpen(cmd WSCommand, p *PageSession) error {
	var d modalData
	if err := decode(cmd, &d); err != nil {
		return err
	}
	if verr := util.ValidateMaxLength("key", d.Key, maxDetailLength); verr != nil {
		return verr
	}

	switch {
	case d.Key != "":
		if !p.modal.Open(d.Key) {
			return fmt.Errorf("unknown detail %q", d.Key)
		}
	case d.Image != "":
		if !p.isHighlight(d.Image) {
			return fmt.Errorf("unknown image %q", d.Image)
		}
		p.modal.OpenImage(d.Image, d.Alt)
	default:
		return fmt.Errorf("modal.open needs a key or an image")
	}
	p.markDirty()
	return nil
}

// isHighlight limits image modals to the gallery images in the content.
func (p *PageSession) isHighlight(src string) bool {
	for _, h := range p.content.Highlights {
		if h.Image == src {
			return true
		}
	}
	return false
}

func decode(cmd WSCommand, v any) error {
	if len(cmd.Data) == 0 {
		return fmt.Errorf("%s: missing data", cmd.Type)
	}
	if err := json.Unmarshal(cmd.Data, v); err != nil {
		return fmt.Errorf("%s: invalid JSON data: %w", cmd.Type, err)
	}
	return nil
}
