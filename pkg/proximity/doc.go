// Package proximity answers nearest-surface, signed-distance and
// nearest-vertex queries against a triangle mesh.
//
// The package-level functions build the acceleration structures on every
// call. A Query keeps them between calls and is safe for concurrent use:
//
//	q, err := proximity.New(m, proximity.WithWorkers(4))
//	if err != nil {
//		return err
//	}
//	res, err := q.OnSurface(ctx, points)
//
// When several triangles are equally close (within the tolerance) to a
// query point, the triangle whose plane faces the point most directly is
// reported, and remaining ties go to the lowest face index. The brute-force
// and accelerated paths apply this rule to the same candidate set, so they
// return identical results.
//
// Signed distances are positive inside the mesh, negative outside and
// exactly zero on the surface. The sign comes from the angle-weighted
// pseudo-normal of the face, edge or vertex holding the closest point, which
// is only well defined for closed, consistently wound meshes; other meshes
// get a best-effort answer and a logged warning.
package proximity
