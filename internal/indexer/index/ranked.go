package index

// InsertLastOccurrence moves the final element of occs into ranked position.
// occs[0:len-1] must already be in non-increasing frequency order. The new
// element lands after every entry whose frequency is greater than or equal to
// its own, so earlier documents keep their place on ties.
//
// The returned slice holds every midpoint index the binary search examined,
// in order. It is nil when occs has a single element and no search runs.
// Calling it with an empty list panics.
func InsertLastOccurrence(occs OccurrenceList) []int {
	n := len(occs)
	if n == 0 {
		panic("index: InsertLastOccurrence called on an empty occurrence list")
	}
	if n == 1 {
		return nil
	}

	target := occs[n-1]
	var mids []int
	low, high := 0, n-2
	for low <= high {
		mid := (low + high) / 2
		mids = append(mids, mid)
		if occs[mid].Frequency >= target.Frequency {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	copy(occs[low+1:], occs[low:n-1])
	occs[low] = target
	return mids
}
