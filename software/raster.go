package software

import "github.com/gogpu/picodraw"

// passOp is one operation of a pass in recording order: either a clear
// or a quad with its resolved input slots.
type passOp struct {
	clear bool
	color picodraw.RGBA

	shader *shader
	bounds picodraw.Bounds
	slots  []slotValue
}

// pass is one render pass collected from the command stream. The target
// handle is zero for screen passes; it exists so self-sampling can be
// rejected while resolving render texture slots.
type pass struct {
	target       *picodraw.Pixmap
	targetHandle picodraw.RenderTexture
	ops          []passOp
}

// rasterize renders a pass. The target is cut into tiles and every tile
// replays the pass's ops in recording order, so blending order inside a
// tile matches the single-threaded result exactly. Tiles are disjoint,
// which is the whole synchronization story: no pixel is touched by two
// workers.
func (b *Backend) rasterize(p *pass) {
	full := picodraw.BoundsForSize(p.target.Size())
	if full.IsEmpty() || len(p.ops) == 0 {
		return
	}

	ts := b.tileSize
	cols := (full.MaxX + ts - 1) / ts
	rows := (full.MaxY + ts - 1) / ts

	jobs := make([]func(), 0, cols*rows)
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			tile := picodraw.Bounds{
				MinX: tx * ts,
				MinY: ty * ts,
				MaxX: min((tx+1)*ts, full.MaxX),
				MaxY: min((ty+1)*ts, full.MaxY),
			}

			// Skip tiles no op touches. Clears touch everything.
			ops := make([]passOp, 0, len(p.ops))
			for _, op := range p.ops {
				if op.clear || !op.bounds.Intersect(tile).IsEmpty() {
					ops = append(ops, op)
				}
			}
			if len(ops) == 0 {
				continue
			}

			target := p.target
			jobs = append(jobs, func() {
				renderTile(target, tile, ops)
			})
		}
	}

	b.log.Debug("rasterizing pass",
		"ops", len(p.ops), "tiles", len(jobs), "size", p.target.Size())
	b.pool.ExecuteAll(jobs)
}

// renderTile replays ops over one tile. The scratch slice is sized for
// the largest shader in the tile and reused for every pixel.
func renderTile(target *picodraw.Pixmap, tile picodraw.Bounds, ops []passOp) {
	maxNodes := 0
	for _, op := range ops {
		if op.shader != nil && len(op.shader.nodes) > maxNodes {
			maxNodes = len(op.shader.nodes)
		}
	}
	scratch := make([]value, maxNodes)

	size := target.Size()
	for _, op := range ops {
		if op.clear {
			clearTile(target, tile, op.color)
			continue
		}

		area := op.bounds.Intersect(tile)
		if area.IsEmpty() {
			continue
		}

		e := env{
			resW:  float32(size.Width),
			resH:  float32(size.Height),
			qsX:   float32(op.bounds.MinX),
			qsY:   float32(op.bounds.MinY),
			qeX:   float32(op.bounds.MaxX),
			qeY:   float32(op.bounds.MaxY),
			slots: op.slots,
		}

		for y := area.MinY; y < area.MaxY; y++ {
			e.py = float32(y) + 0.5
			for x := area.MinX; x < area.MaxX; x++ {
				e.px = float32(x) + 0.5
				c := op.shader.eval(&e, scratch)
				target.BlendPixel(x, y, c)
			}
		}
	}
}

func clearTile(target *picodraw.Pixmap, tile picodraw.Bounds, c picodraw.RGBA) {
	for y := tile.MinY; y < tile.MaxY; y++ {
		for x := tile.MinX; x < tile.MaxX; x++ {
			target.SetPixel(x, y, c)
		}
	}
}
