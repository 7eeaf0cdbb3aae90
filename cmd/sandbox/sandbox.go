package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/logging"
	"github.com/milk9111/mobengine/mob"
	"github.com/milk9111/mobengine/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	whistleRadius = 120
	feedSize      = 8
)

// Sandbox runs one area with every mob type loaded from the content dir.
type Sandbox struct {
	cfg   *config.Config
	debug bool

	scene   *prefabs.Scene
	errs    []error
	sink    *mob.RecordingSink
	feed    []string
	frames  int
	moving  bool
	paused  bool
	step    bool
	ui      *ebitenui.UI
	watcher *prefabs.Watcher
}

func NewSandbox(cfg *config.Config, debug bool) *Sandbox {
	s := &Sandbox{cfg: cfg, debug: debug, sink: &mob.RecordingSink{}}
	s.ui = NewPauseUI(s)
	s.reload()
	return s
}

// reload rebuilds the scene from content. A failed load keeps the
// previous scene running.
func (s *Sandbox) reload() {
	scene, errs := prefabs.LoadScene(s.cfg.Sandbox.Area, s.cfg)
	s.errs = errs
	for _, err := range errs {
		logging.Warn("content error", zap.Error(err))
	}
	if scene == nil {
		return
	}
	scene.World.Sink = s.sink
	s.scene = scene
	s.moving = false
	logging.Info("content reloaded", zap.String("area", s.cfg.Sandbox.Area), zap.Int("errors", len(errs)))
}

// reloadOnChange reloads the scene when the watcher has a batch of
// changed content files.
func (s *Sandbox) reloadOnChange() {
	if s.watcher == nil {
		return
	}
	files, ok := s.watcher.Poll()
	if !ok {
		return
	}
	logging.Info("content files changed", zap.Strings("files", files))
	s.reload()
}

func (s *Sandbox) Update() error {
	s.frames++
	s.reloadOnChange()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.paused = !s.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		s.reload()
	}
	if s.scene == nil {
		return nil
	}

	if s.paused {
		s.ui.Update()
		if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
			s.step = true
		}
		if !s.step {
			return nil
		}
		s.step = false
	}

	s.handleInput()
	s.scene.World.Tick(1 / float64(s.cfg.Sandbox.TPS))
	s.collectEffects()
	return nil
}

func (s *Sandbox) sendInput(leader *mob.Mob, action string, value float64) {
	leader.FSM.RunEvent(mob.EvInputReceived, mob.InputPayload{Action: action, Value: value}, nil)
}

func (s *Sandbox) handleInput() {
	w := s.scene.World
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && w.ActiveLeader != nil {
		w.SetActiveLeader(w.NextLeader(w.ActiveLeader))
		s.moving = false
	}
	leader := w.ActiveLeader
	if leader == nil {
		return
	}

	dx, dy := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy++
	}
	switch {
	case dx != 0 || dy != 0:
		s.sendInput(leader, mob.InputMove, math.Atan2(dy, dx))
		s.moving = true
	case s.moving:
		s.sendInput(leader, mob.InputStop, 0)
		s.moving = false
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		s.sendInput(leader, mob.InputWhistle, whistleRadius)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		s.sendInput(leader, mob.InputDismiss, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.Key1) {
		s.sendInput(leader, mob.InputSpray, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.Key2) {
		s.sendInput(leader, mob.InputSpray, 1)
	}
}

// collectEffects moves the sink's calls into the on-screen feed.
func (s *Sandbox) collectEffects() {
	for _, c := range s.sink.Calls {
		s.feed = append(s.feed, c.String())
	}
	s.sink.Calls = s.sink.Calls[:0]
	if len(s.feed) > feedSize {
		s.feed = s.feed[len(s.feed)-feedSize:]
	}
}

func (s *Sandbox) Draw(screen *ebiten.Image) {
	if s.scene != nil {
		s.drawScene(screen)
	}

	var hud strings.Builder
	fmt.Fprintf(&hud, "Frames: %d    FPS: %.2f\n", s.frames, ebiten.ActualFPS())
	if s.scene != nil {
		w := s.scene.World
		fmt.Fprintf(&hud, "Area: %s    Mobs: %d", s.cfg.Sandbox.Area, len(w.Mobs))
		if l := w.ActiveLeader; l != nil {
			fmt.Fprintf(&hud, "    Leader: %s (group %d)", l.Type.Name, len(l.Group))
		}
		hud.WriteString("\n")
	}
	if len(s.errs) > 0 {
		fmt.Fprintf(&hud, "Content errors: %d (see log)\n", len(s.errs))
	}
	for _, line := range s.feed {
		hud.WriteString(line + "\n")
	}
	ebitenutil.DebugPrint(screen, hud.String())

	if s.paused {
		s.ui.Draw(screen)
	}
}

func (s *Sandbox) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (s *Sandbox) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
