package httpx

import "errors"

var errBodyNotReplayable = errors.New("httpx: request body cannot be replayed without GetBody")
