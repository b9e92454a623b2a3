package service

// WithIDGenerator exposes the job id generator to tests.
var WithIDGenerator = withIDGenerator
