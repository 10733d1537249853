// Package display shows the cartridge's video memory in a window: both
// pattern tables and the four logical nametables as the board mirrors them.
package display

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sqweek/dialog"

	"github.com/meadori/vibecart/bus"
	"github.com/meadori/vibecart/cartridge"
	"github.com/meadori/vibecart/ppu"
)

const (
	menuBarHeight = 50
	statusHeight  = 24
	patternScale  = 2

	nametablesWidth  = 2 * ppu.NametableWidth
	nametablesHeight = 2 * ppu.NametableHeight
	patternSide      = ppu.PatternTableSize * patternScale

	// Width and Height are the logical window size.
	Width  = nametablesWidth + patternSide
	Height = menuBarHeight + 2*patternSide + statusHeight
)

// Display represents the video memory viewer.
type Display struct {
	bus *bus.Bus
	mu  sync.Locker
	rom *cartridge.ROM

	romLoadChan chan string

	// Pattern table used to draw nametable tiles.
	bgTable int

	nametables *ebiten.Image
	patterns   [2]*ebiten.Image
	status     string
	faulted    bool
}

// New creates a new Display over b. Every bus access holds mu. rom, if
// not nil, is the inserted cartridge; the display closes it when another
// one is loaded or on Close.
func New(b *bus.Bus, mu sync.Locker, rom *cartridge.ROM) *Display {
	return &Display{
		bus:         b,
		mu:          mu,
		rom:         rom,
		romLoadChan: make(chan string, 1),
		nametables:  ebiten.NewImage(nametablesWidth, nametablesHeight),
		patterns: [2]*ebiten.Image{
			ebiten.NewImage(patternSide, patternSide),
			ebiten.NewImage(patternSide, patternSide),
		},
	}
}

// Close releases the loaded ROM.
func (d *Display) Close() error {
	if d.rom == nil {
		return nil
	}
	err := d.rom.Close()
	d.rom = nil
	return err
}

func (d *Display) loadROM(path string) {
	rom, err := cartridge.Open(path)
	if err != nil {
		log.Printf("Error loading ROM: %v", err)
		return
	}

	d.mu.Lock()
	err = d.bus.Insert(rom)
	d.mu.Unlock()
	if err != nil {
		log.Printf("Error inserting %s: %v", path, err)
		rom.Close()
		return
	}

	if d.rom != nil {
		d.rom.Close()
	}
	d.rom = rom
	log.Printf("Loaded %s", path)
}

// Update refreshes the decoded views from the bus.
// Update is called every tick (1/60 [s] by default).
func (d *Display) Update() error {
	// Check if a ROM was selected via the async dialog
	select {
	case filename := <-d.romLoadChan:
		d.loadROM(filename)
	default:
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		cx, cy := ebiten.CursorPosition()
		x, y := float32(cx), float32(cy)

		if y >= 5 && y <= 45 { // Inside the button Y boundaries
			if x >= 10 && x <= 90 {
				// POWER (Exit)
				return ebiten.Termination
			} else if x >= 100 && x <= 180 {
				// LOAD
				go func() {
					filename, err := dialog.File().Filter("iNES ROM", "nes").Load()
					if err != nil {
						log.Println(err)
					} else {
						d.romLoadChan <- filename
					}
				}()
			} else if x >= 190 && x <= 270 {
				d.bgTable ^= 1
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		d.bgTable ^= 1
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.bus.HasCartridge() {
		d.status = "No cartridge. Click LOAD to insert one."
		d.faulted = false
		return nil
	}

	nt := ppu.Nametables(d.bus, d.bgTable, ppu.Grayscale)
	d.nametables.WritePixels(nt.Pix)
	for i := range d.patterns {
		pt := ppu.Scale(ppu.PatternTable(d.bus, i, ppu.Grayscale), patternScale)
		d.patterns[i].WritePixels(pt.Pix)
	}

	if err := d.bus.Err(); err != nil {
		d.status = err.Error()
		d.faulted = true
		return nil
	}
	d.faulted = false
	if info, ok := d.bus.MapperInfo(); ok {
		chr := "CHR ROM"
		if info.CHRRAM {
			chr = "CHR RAM"
		}
		d.status = fmt.Sprintf("%s  bank %d/%d  %s mirroring  %s  BG table %d",
			info.Name, info.Bank, info.Banks, info.Mirroring, chr, d.bgTable)
	}
	return nil
}

// Draw draws the decoded views and the menu bar.
func (d *Display) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, menuBarHeight)
	screen.DrawImage(d.nametables, op)

	for i, img := range d.patterns {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(nametablesWidth, float64(menuBarHeight+i*patternSide))
		screen.DrawImage(img, op)
	}

	// Status line
	statusY := float32(Height - statusHeight)
	statusColor := color.RGBA{40, 40, 40, 255}
	if d.faulted {
		statusColor = color.RGBA{160, 20, 20, 255}
	}
	vector.DrawFilledRect(screen, 0, statusY, Width, statusHeight, statusColor, false)
	ebitenutil.DebugPrintAt(screen, d.status, 8, int(statusY)+4)

	// Menu bar
	vector.DrawFilledRect(screen, 0, 0, Width, menuBarHeight, color.RGBA{190, 190, 190, 255}, false)
	vector.DrawFilledRect(screen, 0, menuBarHeight-4, Width, 4, color.RGBA{40, 40, 40, 255}, false)

	cx, cy := ebiten.CursorPosition()
	mouseX, mouseY := float32(cx), float32(cy)
	isMouseDown := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	buttons := []struct {
		label string
		x     float32
	}{
		{"POWER", 10},
		{"LOAD", 100},
		{"TABLE", 190},
	}
	for _, b := range buttons {
		hover := mouseX >= b.x && mouseX <= b.x+80 && mouseY >= 5 && mouseY <= 45
		drawButton(screen, b.label, b.x, 5, 80, 40, hover, hover && isMouseDown)
	}
}

func drawButton(screen *ebiten.Image, textStr string, x, y, w, h float32, isHovered, isPressed bool) {
	baseColor := color.RGBA{70, 70, 70, 255}
	lightColor := color.RGBA{120, 120, 120, 255}
	darkColor := color.RGBA{40, 40, 40, 255}

	if isHovered {
		baseColor = color.RGBA{85, 85, 85, 255}
		lightColor = color.RGBA{140, 140, 140, 255}
	}

	if isPressed {
		// Invert the bevel
		lightColor, darkColor = darkColor, lightColor
	}

	vector.DrawFilledRect(screen, x, y, w, h, baseColor, false)

	borderSize := float32(4)
	vector.DrawFilledRect(screen, x, y, w, borderSize, lightColor, false)
	vector.DrawFilledRect(screen, x, y, borderSize, h, lightColor, false)
	vector.DrawFilledRect(screen, x, y+h-borderSize, w, borderSize, darkColor, false)
	vector.DrawFilledRect(screen, x+w-borderSize, y, borderSize, h, darkColor, false)

	textImg := ebiten.NewImage(len(textStr)*6, 16)
	ebitenutil.DebugPrintAt(textImg, textStr, 0, 0)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(2, 2)

	// Center the text in the button
	textW := float32(len(textStr) * 6 * 2)
	textH := float32(16 * 2)
	textX := x + (w-textW)/2
	textY := y + (h-textH)/2 + 4 // slight downward offset for debug font

	if isPressed {
		textX += 2
		textY += 2
	}

	op.GeoM.Translate(float64(textX), float64(textY))
	op.ColorScale.ScaleWithColor(color.RGBA{220, 50, 50, 255})
	screen.DrawImage(textImg, op)
}

// Layout returns the fixed logical screen size.
func (d *Display) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return Width, Height
}

// Run opens the viewer window and blocks until it is closed.
func (d *Display) Run(title string) error {
	ebiten.SetWindowSize(Width, Height)
	ebiten.SetWindowTitle(title)
	if err := ebiten.RunGame(d); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// PickROM asks the user for a ROM file with a native dialog.
func PickROM() (string, error) {
	path, err := dialog.File().Filter("iNES ROM", "nes").Title("Open ROM").Load()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
