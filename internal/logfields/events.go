package logfields

import "go.uber.org/zap"

func Event(val string) zap.Field {
	return zap.String("event", val)
}

func Action(val string) zap.Field {
	return zap.String("outcome.action", val)
}
