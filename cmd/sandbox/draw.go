package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/geometry"
	"github.com/milk9111/mobengine/mob"
)

// camera returns the world point drawn at the top-left of the screen. It
// follows the active leader.
func (s *Sandbox) camera() cp.Vector {
	if l := s.scene.World.ActiveLeader; l != nil {
		return l.Pos.Sub(cp.Vector{X: baseWidth / 2, Y: baseHeight / 2})
	}
	return cp.Vector{}
}

func (s *Sandbox) drawScene(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	cam := s.camera()
	w := s.scene.World

	if w.Area != nil {
		for _, sec := range w.Area.Sectors {
			drawSector(screen, sec, s.sectorColor(sec), cam)
		}
		for _, e := range w.Area.Edges {
			a, b := e.Vertices[0].Sub(cam), e.Vertices[1].Sub(cam)
			clr := colornames.Lightgrey
			if e.Sectors[0] == nil || e.Sectors[1] == nil {
				clr = colornames.White
			}
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, clr, true)
		}
	}

	for _, m := range w.Mobs {
		s.drawMob(screen, m, cam)
	}
}

func (s *Sandbox) sectorColor(sec *geometry.Sector) color.Color {
	if sec.Index < len(s.scene.Area.Sectors) {
		if c := s.scene.Area.Sectors[sec.Index].Color; c != nil {
			return c.Color
		}
	}
	switch {
	case sec.Type == geometry.SectorBlocking:
		return colornames.Dimgray
	case sec.BottomlessPit:
		return colornames.Black
	case sec.HasLiquid():
		return colornames.Steelblue
	case len(sec.Hazards) > 0:
		return colornames.Firebrick
	default:
		return colornames.Darkolivegreen
	}
}

func drawSector(screen *ebiten.Image, sec *geometry.Sector, clr color.Color, cam cp.Vector) {
	if len(sec.Polygon) < 3 {
		return
	}
	var path vector.Path
	for i, p := range sec.Polygon {
		p = p.Sub(cam)
		if i == 0 {
			path.MoveTo(float32(p.X), float32(p.Y))
			continue
		}
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(clr)
	vector.FillPath(screen, &path, nil, op)
}

func (s *Sandbox) mobColor(m *mob.Mob) color.Color {
	if spec, ok := s.scene.Types[m.Type.Name]; ok && spec.Color != nil {
		return spec.Color.Color
	}
	return colornames.White
}

func (s *Sandbox) drawMob(screen *ebiten.Image, m *mob.Mob, cam cp.Vector) {
	p := m.Pos.Sub(cam)
	x, y := float32(p.X), float32(p.Y)
	clr := s.mobColor(m)

	if m.RectangularDim.X > 0 && m.RectangularDim.Y > 0 {
		drawRotatedRect(screen, p, m.RectangularDim, m.Angle, clr)
	} else {
		vector.FillCircle(screen, x, y, float32(m.Radius), clr, true)
	}
	if m.IsActiveLeader() {
		vector.StrokeCircle(screen, x, y, float32(m.Radius)+3, 1.5, colornames.Gold, true)
	}

	facing := p.Add(common.AngleToCoordinates(m.Angle, m.Radius+6))
	vector.StrokeLine(screen, x, y, float32(facing.X), float32(facing.Y), 2, colornames.Black, true)

	if !s.debug {
		return
	}
	for i := range m.Type.Hitboxes {
		h := &m.Type.Hitboxes[i]
		hp := m.HitboxPos(i).Sub(cam)
		hc := colornames.Skyblue
		if h.Kind == mob.HitboxAttack {
			hc = colornames.Orangered
		}
		vector.StrokeCircle(screen, float32(hp.X), float32(hp.Y), float32(h.Radius), 1, hc, true)
	}
	if m.NearReach != mob.InvalidIndex {
		r := m.Type.Reaches[m.NearReach]
		drawReachArc(screen, p, m.Angle, m.Radius+r.Radius1, r.Angle1)
	}
	label := "-"
	if m.FSM.Cur != nil {
		label = m.FSM.Cur.Name
	}
	if m.MaxHealth > 0 {
		label += " " + common.F2S(math.Round(m.Health))
	}
	ebitenutil.DebugPrintAt(screen, label, int(x)+int(m.Radius), int(y)-int(m.Radius)-14)
}

func drawRotatedRect(screen *ebiten.Image, center, dim cp.Vector, angle float64, clr color.Color) {
	hw, hh := dim.X/2, dim.Y/2
	corners := []cp.Vector{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	var path vector.Path
	for i, c := range corners {
		p := center.Add(common.RotatePoint(c, angle))
		if i == 0 {
			path.MoveTo(float32(p.X), float32(p.Y))
			continue
		}
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(clr)
	vector.FillPath(screen, &path, nil, op)
}

// drawReachArc outlines the wedge of a reach: radius r, total span angle,
// centered on the facing.
func drawReachArc(screen *ebiten.Image, center cp.Vector, facing, r, span float64) {
	const segments = 16
	start := facing - span/2
	prev := center
	for i := 0; i <= segments; i++ {
		a := start + span*float64(i)/segments
		next := center.Add(common.AngleToCoordinates(a, r))
		vector.StrokeLine(screen, float32(prev.X), float32(prev.Y), float32(next.X), float32(next.Y), 1, colornames.Yellow, true)
		prev = next
	}
	vector.StrokeLine(screen, float32(prev.X), float32(prev.Y), float32(center.X), float32(center.Y), 1, colornames.Yellow, true)
}
