package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"NetPulse/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Renderer formats readings for a terminal.
type Renderer struct {
	label   lipgloss.Style
	up      lipgloss.Style
	down    lipgloss.Style
	loss    lipgloss.Style
	lossBad lipgloss.Style
	muted   lipgloss.Style
}

// NewRenderer creates a renderer whose color profile follows w.
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		label:   r.NewStyle().Bold(true),
		up:      r.NewStyle().Foreground(lipgloss.Color("42")),
		down:    r.NewStyle().Foreground(lipgloss.Color("39")),
		loss:    r.NewStyle().Foreground(lipgloss.Color("245")),
		lossBad: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		muted:   r.NewStyle().Faint(true),
	}
}

// Render returns one line for the reading.
func (r *Renderer) Render(reading model.Reading) string {
	lossStyle := r.loss
	if reading.LossPercent > 0 {
		lossStyle = r.lossBad
	}

	line := fmt.Sprintf("%s %s  %s %s  %s %s",
		r.label.Render("Upload:"), r.up.Render(fmt.Sprintf("%.2f Mbps", reading.UploadMbps)),
		r.label.Render("Download:"), r.down.Render(fmt.Sprintf("%.2f Mbps", reading.DownloadMbps)),
		r.label.Render("Packet Loss:"), lossStyle.Render(fmt.Sprintf("%.2f%%", reading.LossPercent)),
	)
	if !reading.SampledAt.IsZero() {
		line = r.muted.Render(reading.SampledAt.Format("15:04:05")) + " " + line
	}
	return line
}

// ConsolePublisher writes rendered readings to a writer, normally stdout.
type ConsolePublisher struct {
	mu       sync.Mutex
	w        io.Writer
	channel  string
	renderer *Renderer
	closed   bool
}

// NewConsolePublisher creates a console publisher writing to w. channel only names the
// publisher in errors.
func NewConsolePublisher(w io.Writer, channel string) *ConsolePublisher {
	return &ConsolePublisher{w: w, channel: channel, renderer: NewRenderer(w)}
}

func (p *ConsolePublisher) Publish(_ context.Context, reading model.Reading) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return model.NewPublishError(model.ErrorKindClosed, p.channel, model.ErrPublisherClosed)
	}
	if _, err := fmt.Fprintln(p.w, p.renderer.Render(reading)); err != nil {
		return model.NewPublishError(model.ErrorKindTransport, p.channel, err)
	}
	return nil
}

func (p *ConsolePublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
