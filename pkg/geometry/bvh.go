package geometry

import (
	"math"
	"sort"

	"github.com/df07/go-raytracy/pkg/core"
)

// Leaf threshold: if we have this many or fewer triangles, store them in a leaf node
const leafThreshold = 8

// boxPadding widens node boxes so that slab-test rounding never culls a
// triangle the exact test would hit
const boxPadding = 1e-7

// bvhNode represents a node in the triangle hierarchy
type bvhNode struct {
	box       core.AABB
	left      *bvhNode
	right     *bvhNode
	triangles []int // Triangle numbers for leaf nodes (nil for internal nodes)
}

// triangleBVH is a bounding volume hierarchy over one mesh's triangles in local space
type triangleBVH struct {
	mesh *Mesh
	root *bvhNode
}

// meshHit pairs a local-space hit with the triangle that produced it
type meshHit struct {
	hit      Hit
	triangle int
}

// newTriangleBVH constructs a BVH over the given triangle numbers
func newTriangleBVH(mesh *Mesh, triangles []int) *triangleBVH {
	if len(triangles) == 0 {
		return &triangleBVH{mesh: mesh}
	}

	// Sorting reorders the slice, so work on a copy
	working := make([]int, len(triangles))
	copy(working, triangles)

	return &triangleBVH{mesh: mesh, root: buildBVH(mesh, working)}
}

// buildBVH recursively splits triangles at the median of the longest axis
func buildBVH(mesh *Mesh, triangles []int) *bvhNode {
	box := mesh.triangleBounds(triangles[0])
	for _, tri := range triangles[1:] {
		box = box.Union(mesh.triangleBounds(tri))
	}
	extent := box.Max.Subtract(box.Min)
	box = box.Expand(boxPadding * (1 + math.Max(extent.X, math.Max(extent.Y, extent.Z))))

	if len(triangles) <= leafThreshold {
		return &bvhNode{box: box, triangles: triangles}
	}

	axis := box.LongestAxis()
	sort.SliceStable(triangles, func(i, j int) bool {
		return mesh.triangleBounds(triangles[i]).Center().Axis(axis) <
			mesh.triangleBounds(triangles[j]).Center().Axis(axis)
	})

	mid := len(triangles) / 2
	return &bvhNode{
		box:   box,
		left:  buildBVH(mesh, triangles[:mid]),
		right: buildBVH(mesh, triangles[mid:]),
	}
}

// hit returns the nearest triangle hit. Equal distances resolve to the lowest
// triangle number, which is what a front-to-back linear scan keeps.
func (bvh *triangleBVH) hit(ray core.Ray) (meshHit, bool) {
	best := meshHit{triangle: -1}
	if bvh.root != nil {
		bvh.hitNode(bvh.root, ray, &best)
	}
	return best, best.triangle >= 0
}

func (bvh *triangleBVH) hitNode(node *bvhNode, ray core.Ray, best *meshHit) {
	limit := math.Inf(1)
	if best.triangle >= 0 {
		limit = best.hit.Distance
	}
	if !node.box.Hit(ray, 0, limit) {
		return
	}

	if node.triangles != nil {
		for _, tri := range node.triangles {
			h, ok := bvh.mesh.intersectTriangle(tri, ray)
			if !ok {
				continue
			}
			if best.triangle < 0 || h.Distance < best.hit.Distance ||
				(h.Distance == best.hit.Distance && tri < best.triangle) {
				*best = meshHit{hit: h, triangle: tri}
			}
		}
		return
	}

	bvh.hitNode(node.left, ray, best)
	bvh.hitNode(node.right, ray, best)
}
