// Package detection finds streak candidates in intensity frames.
//
// A streak is an elongated bright connected region against a dark
// background. Detection turns a frame into a list of measured regions and
// then applies the area filter that decides which regions are streaks.
//
// # Algorithm Overview
//
//  1. Threshold: a pluggable ThresholdPolicy derives one level per frame
//  2. Binarize and close: strict > level, then a 3x3 closing
//  3. Label: 8-connected components; components touching the border are
//     discarded outright because their major axis is truncated
//  4. Measure: second-moment ellipse of each remaining component
//  5. Filter: keep regions with Area >= minArea
//
// # Threshold Policies
//
// Two policies are provided:
//
//   - OtsuPolicy (default): Otsu level divided by a constant (5). Favors
//     recall, so faint streaks survive at the price of extra noise blobs.
//   - MaxFractionPolicy: brightest sample times a constant (0.085). Favors
//     precision, but a single saturated pixel shifts the level for the
//     whole frame.
//
// # Coordinate System
//
// Regions are reported in row/column order:
//   - Rows increase downward, columns increase rightward
//   - BBox is half-open: (MinRow, MinCol) inclusive, (MaxRow, MaxCol) exclusive
//   - Orientation is measured from the horizontal axis, counter-clockwise as
//     the image is viewed, in (-pi/2, pi/2]
package detection
