// Package ffmpeg shells out to the ffmpeg binary to stitch rendered PNG
// frames into MP4 videos.
package ffmpeg
