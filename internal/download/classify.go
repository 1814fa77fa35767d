package download

// singleFileQuants is the static allow-list of quantization labels published
// as one .gguf file. Everything else is assumed to be a sharded artifact
// split across a quant-named subdirectory. Membership is never derived from
// a listing: an unrecognized but logically single-file label will be treated
// as sharded until it is added here.
var singleFileQuants = map[string]struct{}{
	"IQ1_S":   {},
	"IQ1_M":   {},
	"IQ2_XXS": {},
	"IQ2_XS":  {},
	"IQ2_S":   {},
	"IQ2_M":   {},
	"Q2_K":    {},
	"Q2_K_L":  {},
}

// IsSingleFile reports whether quant downloads as a single .gguf file.
func IsSingleFile(quant string) bool {
	_, ok := singleFileQuants[quant]
	return ok
}

// SingleFileQuants returns the allow-list in no particular order.
func SingleFileQuants() []string {
	out := make([]string, 0, len(singleFileQuants))
	for q := range singleFileQuants {
		out = append(out, q)
	}
	return out
}
