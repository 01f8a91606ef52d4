/*
scanner-1 provides a per frame multi object tracking evaluator for video
analytics pipelines.  Given the bounding boxes produced by an upstream
detector for each frame, it associates detections with persistent tracks by
overlap, refreshes surviving tracks through a per track single object
visual tracker, births tracks for unmatched detections and evicts tracks
that go stale or lose confidence.

Each evaluated frame yields three output channels: a passthrough copy of
the raw frame, the observed detections annotated with matched track
identities, and the generated boxes of every track alive after the frame.

The core association and lifecycle logic lives in the tracker subpackage,
single object tracker implementations in the sot subpackage, and drawing of
annotated frames in the render subpackage.

See example code and usage in the example subdirectory.
*/
package scanner
