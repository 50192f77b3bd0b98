package toc

import "sort"

// ResolveBoundaries replaces every descriptor's placeholder page_end with a
// deterministic value: each section ends exactly where the next one begins,
// and the last section runs to the document's last page. The input is not
// modified.
//
// Descriptors are sorted ascending by page_start; descriptors sharing a
// page_start keep their oracle emission order (stable sort) and compute the
// same end page. The result partitions [first page_start, totalPages-1] with
// no gaps and no overlaps.
func ResolveBoundaries(descs []SectionDescriptor, totalPages int) []SectionDescriptor {
	out := append([]SectionDescriptor(nil), descs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PageStart < out[j].PageStart
	})

	for i := range out {
		if i+1 < len(out) {
			end := out[i+1].PageStart - 1
			if end < 0 {
				end = 0
			}
			out[i].PageEnd = end
		} else {
			end := totalPages - 1
			if end < 0 {
				end = 0
			}
			out[i].PageEnd = end
		}
	}
	return out
}
