package detection

import "image"

// component is one 8-connected group of foreground pixels.
type component struct {
	pixels        []image.Point
	touchesBorder bool
}

// labelComponents groups foreground pixels of a row-major mask into
// 8-connected components, in raster order of their first pixel.
func labelComponents(mask []bool, width, height int) []component {
	visited := make([]bool, len(mask))
	components := make([]component, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if mask[i] && !visited[i] {
				components = append(components, floodFill(mask, visited, x, y, width, height))
			}
		}
	}

	return components
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on long streaks. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(mask, visited []bool, startX, startY, width, height int) component {
	var c component
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		i := p.Y*width + p.X
		if visited[i] || !mask[i] {
			continue
		}

		visited[i] = true
		c.pixels = append(c.pixels, p)
		if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 {
			c.touchesBorder = true
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return c
}
