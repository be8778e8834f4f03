package cgb

// Renderer receives invalidation signals for anything it caches from the
// video core. It never writes back.
type Renderer interface {
	// InvalidatePaletteCache is called after every palette data write.
	InvalidatePaletteCache()
	// TileChanged reports the 16-byte aligned tile address that was written in bank.
	TileChanged(bank int, addr uint16)
}

// Palette is one CRAM bank together with its index and data registers.
type Palette struct {
	mem   PaletteMemory
	index PaletteIndex
	color *PaletteColor
}

func (p *Palette) init() {
	p.mem = newPaletteMemory()
	p.color = NewPaletteColor(&p.mem, &p.index)
}

// Index returns the BCPS/OCPS register.
func (p *Palette) Index() *PaletteIndex { return &p.index }

// Color returns the BCPD/OCPD register.
func (p *Palette) Color() *PaletteColor { return p.color }

// Video owns the CGB video memories: both VRAM banks, the bank select
// register and the background/object palettes. Registers only borrow
// storage from here.
type Video struct {
	vram VRAM
	vbk  BankSelect
	bg   Palette
	obj  Palette

	renderer Renderer
}

// NewVideo creates the video core with hardware reset state. r may be nil.
func NewVideo(r Renderer) *Video {
	v := &Video{renderer: r}
	v.bg.init()
	v.obj.init()
	return v
}

// SetRenderer replaces the invalidation target.
func (v *Video) SetRenderer(r Renderer) { v.renderer = r }

func (v *Video) BG() *Palette  { return &v.bg }
func (v *Video) OBJ() *Palette { return &v.obj }

// --- VBK (FF4F) ---
func (v *Video) ReadVBK() byte       { return v.vbk.Get() }
func (v *Video) WriteVBK(value byte) { v.vbk.Set(value) }
func (v *Video) ActiveBank() int     { return v.vbk.Active() }

// --- BCPS/BCPD (FF68/FF69), OCPS/OCPD (FF6A/FF6B) ---

// ReadBCPS returns the index register with the unused bit 6 reading as 1.
func (v *Video) ReadBCPS() byte       { return v.bg.index.Get() | 0x40 }
func (v *Video) WriteBCPS(value byte) { v.bg.index.Set(value) }
func (v *Video) ReadBCPD() uint16     { return v.bg.color.Get() }
func (v *Video) WriteBCPD(value byte) { v.writeColor(&v.bg, value) }
func (v *Video) ReadOCPS() byte       { return v.obj.index.Get() | 0x40 }
func (v *Video) WriteOCPS(value byte) { v.obj.index.Set(value) }
func (v *Video) ReadOCPD() uint16     { return v.obj.color.Get() }
func (v *Video) WriteOCPD(value byte) { v.writeColor(&v.obj, value) }

func (v *Video) writeColor(p *Palette, value byte) {
	p.color.Set(value)
	if v.renderer != nil {
		v.renderer.InvalidatePaletteCache()
	}
}

// BGColor resolves a background palette color to 0xRRGGBB.
func (v *Video) BGColor(palette, color int) (uint32, error) {
	return v.bg.color.ResolveColor(palette, color)
}

// OBJColor resolves an object palette color to 0xRRGGBB.
func (v *Video) OBJColor(palette, color int) (uint32, error) {
	return v.obj.color.ResolveColor(palette, color)
}

// --- VRAM ---

// ReadVRAM reads addr from the bank selected by VBK.
func (v *Video) ReadVRAM(addr uint16) (byte, error) {
	return v.vram.Read(v.vbk.Active(), addr)
}

// ReadVRAMBank reads addr from an explicit bank, for the renderer.
func (v *Video) ReadVRAMBank(bank int, addr uint16) (byte, error) {
	return v.vram.Read(bank, addr)
}

// WriteVRAM writes addr in the bank selected by VBK. Writes into tile data
// (below 0x9800) are reported to the renderer.
func (v *Video) WriteVRAM(addr uint16, value byte) error {
	bank := v.vbk.Active()
	if err := v.vram.Write(bank, addr, value); err != nil {
		return err
	}
	if addr < tileDataEnd && v.renderer != nil {
		v.renderer.TileChanged(bank, addr&0xFFF0)
	}
	return nil
}
