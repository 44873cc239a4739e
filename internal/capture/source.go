package capture

import "gocv.io/x/gocv"

// maxProbeID bounds the device scan; consumer machines rarely expose
// more than a handful of video devices.
const maxProbeID = 8

// ListDevices probes camera device IDs and returns the ones that open
// and deliver a frame. Probing opens each device briefly, so call this
// before any Source is started.
func ListDevices() []int {
	var ids []int
	mat := gocv.NewMat()
	defer mat.Close()

	for id := 0; id < maxProbeID; id++ {
		cam, err := gocv.OpenVideoCapture(id)
		if err != nil {
			continue
		}
		if cam.Read(&mat) && !mat.Empty() {
			ids = append(ids, id)
		}
		cam.Close()
	}
	return ids
}
