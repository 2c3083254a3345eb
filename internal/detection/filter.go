package detection

// DefaultMinArea is the smallest component, in pixels, accepted as a streak.
const DefaultMinArea = 100

// FilterRegions keeps the regions with Area >= minArea, preserving order.
// Regions exactly at minArea are accepted.
func FilterRegions(regions []Region, minArea int) []Region {
	accepted, _ := PartitionRegions(regions, minArea)
	return accepted
}

// PartitionRegions splits regions into those accepted by the area filter and
// those rejected by it, each in input order.
func PartitionRegions(regions []Region, minArea int) (accepted, rejected []Region) {
	accepted = make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.Area >= minArea {
			accepted = append(accepted, r)
		} else {
			rejected = append(rejected, r)
		}
	}
	return accepted, rejected
}
