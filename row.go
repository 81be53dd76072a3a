package floe

// Row is a minimal read-only positional tuple. Implementations must be cheap
// to index; callers never mutate a row through this interface.
type Row interface {
	Len() int
	Get(i int) Value
}

// Values is a plain slice-backed row.
type Values []Value

func (v Values) Len() int {
	return len(v)
}

func (v Values) Get(i int) Value {
	return v[i]
}

type joinedRow struct {
	left  Row
	right Row
}

// JoinRows concatenates two rows without copying either side. The right side
// is typically a constant tuple shared by every row of a task.
func JoinRows(left, right Row) Row {
	return joinedRow{left: left, right: right}
}

func (r joinedRow) Len() int {
	return r.left.Len() + r.right.Len()
}

func (r joinedRow) Get(i int) Value {
	if i < r.left.Len() {
		return r.left.Get(i)
	}
	return r.right.Get(i - r.left.Len())
}

// CopyRow materializes any row into an owned Values slice.
func CopyRow(row Row) Values {
	out := make(Values, row.Len())
	for i := range out {
		out[i] = row.Get(i)
	}
	return out
}
