package models

import "github.com/PizzaHomicide/mirrorplay/internal/playback"

// presenter collects what the controller renders during one Update.  The app applies it to its models afterwards.
type presenter struct {
	state   playback.State
	pending []playback.Notification
}

func newPresenter() *presenter {
	return &presenter{state: playback.State{Phase: playback.PhaseIdle}}
}

func (p *presenter) Render(s playback.State) {
	p.state = s
}

func (p *presenter) Notify(n playback.Notification) {
	p.pending = append(p.pending, n)
}

// drain returns and clears the notifications collected so far
func (p *presenter) drain() []playback.Notification {
	pending := p.pending
	p.pending = nil
	return pending
}
