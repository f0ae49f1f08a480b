// Package navigator loads pages from the results site and answers element queries
// against them.
//
// PageNavigator is what the crawler drives: open a URL, read the current page and
// trigger the site's page actions (PageSubmit for pagination). HTTP is the
// production implementation; Document is the parsed page both share with tests.
package navigator
