// Package notifier announces newly synchronized tournaments.
//
// A DryRunNotifier prints the posts it would make; a TwitterNotifier posts them
// with OAuth1 credentials, pausing between posts to stay under rate limits.
package notifier
