package glimpse

// resizeBilinear resamples src (sh by sw, c channels, row-major HWC) into
// dst (dh by dw, same channel count) using bilinear interpolation with half-pixel
// centers and edge clamping. At an exact 2x reduction the sample points fall
// midway between source pixels, so the result degenerates to 2x2 block
// means, which keeps test vectors hand-computable.
func resizeBilinear(src []float32, sh, sw, c int, dst []float32, dh, dw int) {
	scaleY := float64(sh) / float64(dh)
	scaleX := float64(sw) / float64(dw)

	for y := 0; y < dh; y++ {
		sy := (float64(y)+0.5)*scaleY - 0.5
		if sy < 0 {
			sy = 0
		}
		y0 := int(sy)
		if y0 > sh-1 {
			y0 = sh - 1
		}
		fy := sy - float64(y0)
		y1 := y0 + 1
		if y1 > sh-1 {
			y1 = sh - 1
		}

		for x := 0; x < dw; x++ {
			sx := (float64(x)+0.5)*scaleX - 0.5
			if sx < 0 {
				sx = 0
			}
			x0 := int(sx)
			if x0 > sw-1 {
				x0 = sw - 1
			}
			fx := sx - float64(x0)
			x1 := x0 + 1
			if x1 > sw-1 {
				x1 = sw - 1
			}

			for ch := 0; ch < c; ch++ {
				v00 := float64(src[(y0*sw+x0)*c+ch])
				v01 := float64(src[(y0*sw+x1)*c+ch])
				v10 := float64(src[(y1*sw+x0)*c+ch])
				v11 := float64(src[(y1*sw+x1)*c+ch])
				top := v00 + (v01-v00)*fx
				bot := v10 + (v11-v10)*fx
				dst[(y*dw+x)*c+ch] = float32(top + (bot-top)*fy)
			}
		}
	}
}
