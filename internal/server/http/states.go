package http

type sessionState uint8

const (
	stateIdle sessionState = iota + 1
	stateReading
	stateDispatching
	stateWriting
	stateClosed
)
