// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import "time"

// # Acknowledgments

// AckKind classifies an acknowledgment for presentation.
type AckKind string

const (
	AckInfo    AckKind = "info"
	AckSuccess AckKind = "success"
)

// Acknowledgment is an advisory, fire-and-forget notice for the user.
type Acknowledgment struct {
	Kind        AckKind `json:"kind"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	DurationMS  int64   `json:"duration_ms"`
	Dismissible bool    `json:"dismissible"`
}

// Duration is the suggested display time. Consumers may ignore it.
func (a Acknowledgment) Duration() time.Duration {
	return time.Duration(a.DurationMS) * time.Millisecond
}

// ResetAcknowledgment is emitted by reset.
func ResetAcknowledgment() Acknowledgment {
	return Acknowledgment{
		Kind:        AckInfo,
		Title:       "Reset to default",
		Message:     "Avatar reset to default appearance.",
		DurationMS:  2000,
		Dismissible: true,
	}
}

// CommitAcknowledgment is emitted by commit, before the surface closes.
func CommitAcknowledgment() Acknowledgment {
	return Acknowledgment{
		Kind:        AckSuccess,
		Title:       "Avatar saved!",
		Message:     "Your customization has been applied.",
		DurationMS:  3000,
		Dismissible: true,
	}
}

// # Sink Contracts

// PreviewSink receives the complete draft after every change.
type PreviewSink interface {
	Preview(cfg Configuration)
}

// ResultSink receives the finalized configuration, once, on commit.
type ResultSink interface {
	Save(cfg Configuration)
}

// Acknowledger receives user-facing acknowledgments.
type Acknowledger interface {
	Acknowledge(ack Acknowledgment)
}

// Host owns the customization surface and closes it on request.
type Host interface {
	RequestClose()
}

// PreviewFunc adapts a function to [PreviewSink].
type PreviewFunc func(cfg Configuration)

func (f PreviewFunc) Preview(cfg Configuration) { f(cfg) }

// ResultFunc adapts a function to [ResultSink].
type ResultFunc func(cfg Configuration)

func (f ResultFunc) Save(cfg Configuration) { f(cfg) }

// AcknowledgeFunc adapts a function to [Acknowledger].
type AcknowledgeFunc func(ack Acknowledgment)

func (f AcknowledgeFunc) Acknowledge(ack Acknowledgment) { f(ack) }

// CloseFunc adapts a function to [Host].
type CloseFunc func()

func (f CloseFunc) RequestClose() { f() }

// Sinks bundles the collaborators of a [Controller]. Nil members are no-ops.
type Sinks struct {
	Preview     PreviewSink
	Result      ResultSink
	Acknowledge Acknowledger
	Host        Host
}

// withDefaults fills nil sinks with no-ops.
func (s Sinks) withDefaults() Sinks {
	if s.Preview == nil {
		s.Preview = PreviewFunc(func(Configuration) {})
	}
	if s.Result == nil {
		s.Result = ResultFunc(func(Configuration) {})
	}
	if s.Acknowledge == nil {
		s.Acknowledge = AcknowledgeFunc(func(Acknowledgment) {})
	}
	if s.Host == nil {
		s.Host = CloseFunc(func() {})
	}
	return s
}
