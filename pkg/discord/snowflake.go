package discord

import (
	"strconv"
	"time"
)

// Discord epoch: first second of 2015, in milliseconds.
const snowflakeEpoch = 1420070400000

// timeToSnowflake converts an instant into a snowflake usable as a
// search cursor. The low 22 bits (worker/process/sequence) stay zero.
func timeToSnowflake(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-snowflakeEpoch)<<22, 10)
}

// snowflakeToTime recovers the timestamp embedded in a snowflake.
func snowflakeToTime(id string) time.Time {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(n>>22 + snowflakeEpoch)
}
