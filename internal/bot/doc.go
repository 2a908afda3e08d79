// Package bot implements a single run of the fedora bot.
//
// For every registered component the bot checks if a newer upstream release
// than the latest koji build exists. When one exists, it merges the dist-git
// pull request that packit opened for the release, once all of its CI checks
// passed. If no pull request for the release exists, it ensures that a bodhi
// update exists for the latest build of every current Fedora release. Without
// a release service only the latest build of the default koji tag is
// considered.
//
// Components are processed sequentially in registry order. Processing a
// component is a small state machine:
//
//	START -> DETECTING -> UP_TO_DATE
//	                   -> RELEASE_PENDING -> MERGING -> MERGED
//	                                                 -> AWAITING_CHECKS
//	                                                 -> SKIPPED (merging disabled)
//	                                                 -> DUPLICATE_ERROR
//	                                                 -> NO_MATCH -> SUBMITTING -> SUBMITTED
//	                                                                           -> UPDATE_EXISTS
//	                                                                           -> AWAITING_BUILD
//	                                                                           -> SKIPPED (updates disabled)
//	                   -> ERROR
//
// Every component ends in exactly one terminal state and produces exactly one
// outcome.Record. Failures are contained to the component that is processed,
// they never prevent the remaining components from being processed.
package bot
