package tub

// Well-known field names and type tags shared by the Donkeycar-style
// datasets this tool operates on.
const (
	// ImageField stores an out-of-line image: the persisted record holds a
	// filename relative to the dataset's images directory.
	ImageField = "cam/image_array"

	// AngleField is the steering signal.
	AngleField = "user/angle"

	// ThrottleField is the throttle signal.
	ThrottleField = "user/throttle"

	// BrakeField is the brake signal, in [0.0, 1.0] by convention.
	BrakeField = "user/brake"

	// FloatType is the type tag for scalar float fields.
	FloatType = "float"

	// ImageArrayType is the type tag for out-of-line image fields.
	ImageArrayType = "image_array"
)

// Reserved record keys stamped by the writer.
const (
	// IndexKey is the sequential record index within the dataset.
	IndexKey = "_index"

	// TimestampKey is the wall-clock write time in milliseconds.
	TimestampKey = "_timestamp_ms"

	// SessionIDKey identifies the writer session that produced the record.
	SessionIDKey = "_session_id"
)

// Record is one timestep: a mapping from field name to value. Scalar fields
// hold JSON scalars; the image field holds an image.Image in memory and a
// filename string on disk.
type Record map[string]any

// Has reports whether the record carries the named field.
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// SetDefault stores value under name unless the field is already present.
// It reports whether the default was applied.
func (r Record) SetDefault(name string, value any) bool {
	if r.Has(name) {
		return false
	}
	r[name] = value
	return true
}

// Index returns the record's sequential index, or -1 if it has none.
func (r Record) Index() int {
	return intValue(r[IndexKey], -1)
}
