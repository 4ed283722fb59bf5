package cooc

import "iter"

// Window is a run of consecutive positions into a single document.
type Window []int

// Windows slides a window of the given width across a document of the given
// length, advancing one position per step:
//
//	[0..width), [1..width+1), ..., [length-width..length)
//
// Documents shorter than width produce no windows. A document whose length
// equals width produces exactly one.
func Windows(length, width int) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		if width < 1 || length < width {
			return
		}
		for start := 0; start+width <= length; start++ {
			w := make(Window, width)
			for i := range w {
				w[i] = start + i
			}
			if !yield(w) {
				return
			}
		}
	}
}

// NumWindows returns how many windows Windows(length, width) yields.
func NumWindows(length, width int) int {
	if width < 1 || length < width {
		return 0
	}
	return length - width + 1
}
