// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"strings"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-xpbd/pkg/scene"
)

// HUDRefresh is how often, in seconds, the window title is rewritten
const HUDRefresh = 0.25

// HUDSystem shows simulation counters in the window title
type HUDSystem struct {
	sys   *scene.PhysicsSystem
	title string

	elapsed float32
	last    string
}

// NewHUDSystem creates a HUD prefixing its status with title
func NewHUDSystem(sys *scene.PhysicsSystem, title string) *HUDSystem {
	return &HUDSystem{sys: sys, title: title}
}

// Status formats the current counters
func (hud *HUDSystem) Status() string {
	sim := hud.sys.Simulator()
	parts := []string{
		hud.title,
		fmt.Sprintf("step %d", sim.StepCount()),
		fmt.Sprintf("bodies %d", sim.BodyCount()),
		fmt.Sprintf("contacts %d", len(sim.Contacts())),
		fmt.Sprintf("despawned %d", hud.sys.Despawned()),
	}
	if hud.sys.Paused() {
		parts = append(parts, "paused")
	}
	return strings.Join(parts, " | ")
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(ecs.BasicEntity) {}

// Update rewrites the title when the status changed
func (hud *HUDSystem) Update(dt float32) {
	hud.elapsed += dt
	if hud.elapsed < HUDRefresh {
		return
	}
	hud.elapsed = 0

	if status := hud.Status(); status != hud.last {
		engo.SetTitle(status)
		hud.last = status
	}
}
