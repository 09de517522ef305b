package obwire

// ResultHandler consumes decoded result units as they arrive on the wire.
// The decoder invokes it once per column-header event and once per data row,
// without buffering the result set; a query returning multiple result sets
// sees OnColumns more than once. OnServerError is the last call of a stream
// that the server aborted.
//
// The slices handed to OnColumns and OnRow are owned by the handler and stay
// valid after the call returns.
type ResultHandler interface {
	OnColumns(names []string)
	OnRow(values [][]byte)
	OnServerError(err *ServerError)
}

// ResultFuncs adapts plain functions to a ResultHandler. Nil members are
// skipped.
type ResultFuncs struct {
	Columns func(names []string)
	Row     func(values [][]byte)
	Err     func(err *ServerError)
}

// OnColumns implements ResultHandler.
func (r ResultFuncs) OnColumns(names []string) {
	if r.Columns != nil {
		r.Columns(names)
	}
}

// OnRow implements ResultHandler.
func (r ResultFuncs) OnRow(values [][]byte) {
	if r.Row != nil {
		r.Row(values)
	}
}

// OnServerError implements ResultHandler.
func (r ResultFuncs) OnServerError(err *ServerError) {
	if r.Err != nil {
		r.Err(err)
	}
}
