package lktrack

import "github.com/pkg/errors"

// ClassificationBits is the number of user classification flags a record can hold
const ClassificationBits = 64

// Classification is a set of user assigned flags, independent of the tracking status.
type Classification uint64

// Has reports whether bit i is set
func (c Classification) Has(i int) bool {
	if i < 0 || i >= ClassificationBits {
		return false
	}
	return c&(1<<uint(i)) != 0
}

// Set returns a copy of c with bit i set
func (c Classification) Set(i int) (Classification, error) {
	if i < 0 || i >= ClassificationBits {
		return c, errors.Wrapf(ErrOutOfRange, "classification bit %d", i)
	}
	return c | (1 << uint(i)), nil
}

// Clear returns a copy of c with bit i cleared
func (c Classification) Clear(i int) (Classification, error) {
	if i < 0 || i >= ClassificationBits {
		return c, errors.Wrapf(ErrOutOfRange, "classification bit %d", i)
	}
	return c &^ (1 << uint(i)), nil
}

// Apply writes the first n bits of target into c: bits which are on in target are set, the others are cleared.
// Bits at n and above are left as they are.
func (c Classification) Apply(target Classification, n int) Classification {
	n = clampInt(n, 0, ClassificationBits)
	if n == 0 {
		return c
	}
	var mask Classification
	if n == ClassificationBits {
		mask = ^Classification(0)
	} else {
		mask = (1 << uint(n)) - 1
	}
	return (c &^ mask) | (target & mask)
}

// PointRecord is the value of one trajectory at one frame.
type PointRecord struct {
	Position       Point
	Status         Status
	Classification Classification
	// Placeholder records only keep the flat view aligned with trajectory ids.
	// They carry no position and must never be rendered or exported.
	Placeholder bool
}

// NewPointRecord creates valid record at given position
func NewPointRecord(pos Point) PointRecord {
	return PointRecord{
		Position: pos,
		Status:   StatusValid,
	}
}

func placeholderRecord() PointRecord {
	return PointRecord{
		Position:    InvalidPoint,
		Status:      StatusNonExistent,
		Placeholder: true,
	}
}

// withStatus returns copy of the record with new status
func (rec PointRecord) withStatus(status Status) PointRecord {
	rec.Status = status
	rec.Placeholder = false
	return rec
}
