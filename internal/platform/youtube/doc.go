// Package youtube fetches timed transcripts of YouTube videos.
//
// It reads the caption track list embedded in the public watch page and
// downloads the preferred track as timed-text XML. No API key is needed.
package youtube
