package model

import "strings"

// ResponseBucket classifies how quickly an expert usually answers.
type ResponseBucket int

// Response buckets, fastest first. BucketUnknown marks a wire value that did
// not parse; scorers treat it as BucketSlower.
const (
	BucketUnknown ResponseBucket = iota
	BucketImmediate
	BucketWithinOneHour
	BucketWithinThreeHours
	BucketWithinOneDay
	BucketSlower
)

var bucketNames = map[ResponseBucket]string{
	BucketUnknown:          "unknown",
	BucketImmediate:        "immediate",
	BucketWithinOneHour:    "within_one_hour",
	BucketWithinThreeHours: "within_three_hours",
	BucketWithinOneDay:     "within_one_day",
	BucketSlower:           "slower",
}

// aliases are keyed by the squashed form produced by squashBucket.
var bucketAliases = map[string]ResponseBucket{
	"immediate":        BucketImmediate,
	"instant":          BucketImmediate,
	"withinonehour":    BucketWithinOneHour,
	"within1hour":      BucketWithinOneHour,
	"1h":               BucketWithinOneHour,
	"withinthreehours": BucketWithinThreeHours,
	"within3hours":     BucketWithinThreeHours,
	"3h":               BucketWithinThreeHours,
	"withinoneday":     BucketWithinOneDay,
	"within1day":       BucketWithinOneDay,
	"within24hours":    BucketWithinOneDay,
	"24h":              BucketWithinOneDay,
	"1d":               BucketWithinOneDay,
	"slower":           BucketSlower,
}

// String returns the canonical wire name.
func (b ResponseBucket) String() string {
	if name, ok := bucketNames[b]; ok {
		return name
	}
	return bucketNames[BucketUnknown]
}

// Known reports whether b is one of the five defined buckets.
func (b ResponseBucket) Known() bool {
	return b >= BucketImmediate && b <= BucketSlower
}

// ParseResponseBucket maps a wire string to a bucket. Matching ignores case,
// whitespace, '_' and '-'. Unrecognized input yields BucketUnknown and false.
func ParseResponseBucket(raw string) (ResponseBucket, bool) {
	b, ok := bucketAliases[squashBucket(raw)]
	if !ok {
		return BucketUnknown, false
	}
	return b, true
}

func squashBucket(raw string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch r {
		case ' ', '\t', '_', '-':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
