package app

import (
	"math/rand"
	"sync"
	"time"
)

// TauntPicker chooses the message shown while locked out.
type TauntPicker struct {
	messages []string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewTauntPicker builds a picker; a nil rnd is seeded from the current time.
func NewTauntPicker(messages []string, rnd *rand.Rand) *TauntPicker {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TauntPicker{messages: append([]string(nil), messages...), rnd: rnd}
}

// Pick returns a random message, or "" when none are configured.
func (p *TauntPicker) Pick() string {
	if p == nil || len(p.messages) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[p.rnd.Intn(len(p.messages))]
}
