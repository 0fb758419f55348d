package math

/** @brief a 4x4 column-major matrix, as accepted by SetTransform. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 */
func NewMat4Identity() Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0
	out_matrix.Data[5] = 1.0
	out_matrix.Data[10] = 1.0
	out_matrix.Data[15] = 1.0
	return out_matrix
}

/**
 * @brief Returns the result of multiplying mt and other (mt applied last).
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out_matrix := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[i*4+row] * other.Data[col*4+i]
			}
			out_matrix.Data[col*4+row] = sum
		}
	}
	return out_matrix
}

/**
 * @brief Creates and returns an orthographic projection matrix. Typically used to
 * render flat or 2D scenes.
 *
 * @param left The left side of the view frustum.
 * @param right The right side of the view frustum.
 * @param bottom The bottom side of the view frustum.
 * @param top The top side of the view frustum.
 * @param near_clip The near clipping plane distance.
 * @param far_clip The far clipping plane distance.
 * @return A new orthographic projection matrix.
 */
func NewMat4Orthographic(left, right, bottom, top, near_clip, far_clip float32) Mat4 {
	out_matrix := NewMat4Identity()

	lr := 1.0 / (left - right)
	bt := 1.0 / (bottom - top)
	nf := 1.0 / (near_clip - far_clip)

	out_matrix.Data[0] = -2.0 * lr
	out_matrix.Data[5] = -2.0 * bt
	out_matrix.Data[10] = 2.0 * nf

	out_matrix.Data[12] = (left + right) * lr
	out_matrix.Data[13] = (top + bottom) * bt
	out_matrix.Data[14] = (far_clip + near_clip) * nf
	return out_matrix
}

// Affine extracts the 2D part of the matrix: the upper-left 2x2 block and
// the x/y translation.
func (mt Mat4) Affine() Affine {
	d := mt.Data
	return Affine{
		float64(d[0]), float64(d[4]), float64(d[12]),
		float64(d[1]), float64(d[5]), float64(d[13]),
	}
}

// Mat4 embeds the affine transform in a column-major 4x4 matrix.
func (a Affine) Mat4() Mat4 {
	out := NewMat4Identity()
	out.Data[0] = float32(a[0])
	out.Data[4] = float32(a[1])
	out.Data[12] = float32(a[2])
	out.Data[1] = float32(a[3])
	out.Data[5] = float32(a[4])
	out.Data[13] = float32(a[5])
	return out
}
