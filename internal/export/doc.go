// Package export writes the cleaned tables and the unified table as flat CSV
// files and can upload them to an S3-compatible bucket.
package export
