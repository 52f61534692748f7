// Package nzbget models the environment contract between NZBGet and its
// post-processing scripts: the NZBPP_* job variables on the way in and the
// 93/94/95 exit codes on the way out.
package nzbget
