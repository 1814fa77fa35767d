package preflight

import "golang.org/x/sys/unix"

// quantSizeGiB estimates on-disk size per quant tier, sized for the ~70B
// class of model this tool targets. Estimates are deliberately generous;
// the operator can confirm past a shortfall.
var quantSizeGiB = map[string]uint64{
	"IQ1_S": 16, "IQ1_M": 17,
	"IQ2_XXS": 20, "IQ2_XS": 21, "IQ2_S": 23, "IQ2_M": 25,
	"Q2_K": 27, "Q2_K_L": 29,
	"IQ3_XXS": 29, "IQ3_XS": 30, "IQ3_M": 34,
	"Q3_K_S": 31, "Q3_K_M": 35, "Q3_K_L": 38,
	"IQ4_XS": 39, "IQ4_NL": 41,
	"Q4_K_S": 41, "Q4_K_M": 43, "Q4_0": 40, "Q4_1": 45,
	"Q5_K_S": 49, "Q5_K_M": 51, "Q5_0": 49, "Q5_1": 54,
	"Q6_K": 59,
	"Q8_0": 75,
	"F16": 142, "BF16": 142,
}

const fallbackGiB = 80

// EstimateBytes returns the rough artifact size for a quant label.
func EstimateBytes(quant string) uint64 {
	g, ok := quantSizeGiB[quant]
	if !ok {
		g = fallbackGiB
	}
	return g << 30
}

func freeBytes(dir string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}
