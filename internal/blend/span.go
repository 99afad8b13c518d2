package blend

// BlendSpan blends n premultiplied RGBA pixels of src into dst with mode.
func BlendSpan(dst, src []byte, n int, mode BlendMode) {
	fn := GetBlendFunc(mode)
	for i := 0; i < n; i++ {
		d, s := dst[i*4:i*4+4], src[i*4:i*4+4]
		d[0], d[1], d[2], d[3] = fn(s[0], s[1], s[2], s[3], d[0], d[1], d[2], d[3])
	}
}

// MaskSpan blends an A8 coverage span into n premultiplied RGBA pixels of
// dst. Each coverage byte acts as a source pixel with zero colour and that
// alpha.
func MaskSpan(dst, coverage []byte, n int, mode BlendMode) {
	fn := GetBlendFunc(mode)
	for i := 0; i < n; i++ {
		d := dst[i*4 : i*4+4]
		d[0], d[1], d[2], d[3] = fn(0, 0, 0, coverage[i], d[0], d[1], d[2], d[3])
	}
}

// MaskAlphaSpan is MaskSpan for straight-alpha pixels. Only the alpha
// channel is blended and colour is kept, which matches premultiplied
// results for the operators whose colour term is a multiple of D
// (BlendDestinationIn, BlendDestinationOut).
func MaskAlphaSpan(dst, coverage []byte, n int, mode BlendMode) {
	fn := GetBlendFunc(mode)
	for i := 0; i < n; i++ {
		_, _, _, dst[i*4+3] = fn(0, 0, 0, coverage[i], 0, 0, 0, dst[i*4+3])
	}
}
