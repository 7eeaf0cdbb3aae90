package mob

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// SinkCall is one effect a RecordingSink received.
type SinkCall struct {
	Mob  int
	Kind string
	Arg  string
}

func (c SinkCall) String() string {
	return fmt.Sprintf("mob %d: %s %s", c.Mob, c.Kind, c.Arg)
}

// RecordingSink keeps every effect it receives, in order. It is used by
// headless runs and tests.
type RecordingSink struct {
	Calls []SinkCall
}

func (s *RecordingSink) add(m *Mob, kind, arg string) {
	id := 0
	if m != nil {
		id = m.ID
	}
	s.Calls = append(s.Calls, SinkCall{Mob: id, Kind: kind, Arg: arg})
}

func (s *RecordingSink) PlaySound(m *Mob, sound string) { s.add(m, "play_sound", sound) }
func (s *RecordingSink) StopSound(m *Mob)               { s.add(m, "stop_sound", "") }
func (s *RecordingSink) StartParticles(m *Mob, gen string, offset cp.Vector, z float64) {
	s.add(m, "start_particles", fmt.Sprintf("%s %g %g %g", gen, offset.X, offset.Y, z))
}
func (s *RecordingSink) StopParticles(m *Mob)            { s.add(m, "stop_particles", "") }
func (s *RecordingSink) ShowMessage(m *Mob, text string) { s.add(m, "show_message", text) }

// Kinds returns the kind of every recorded call.
func (s *RecordingSink) Kinds() []string {
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Kind
	}
	return out
}
