package command

import "strconv"

// servoNames maps bus servo IDs to joint names on the humanoid body, for
// readable diagnostics only; nothing in the command path depends on them.
var servoNames = map[int]string{
	1:  "L_ankle_roll",
	2:  "L_ankle_pitch",
	3:  "L_knee",
	4:  "L_hip_pitch",
	5:  "L_hip_roll",
	6:  "L_elbow",
	7:  "L_shoulder_roll",
	8:  "L_shoulder_pitch",
	9:  "R_ankle_roll",
	10: "R_ankle_pitch",
	11: "R_knee",
	12: "R_hip_pitch",
	13: "R_hip_roll",
	14: "R_elbow",
	15: "R_shoulder_roll",
	16: "R_shoulder_pitch",
}

// ServoName returns the joint name for a bus servo ID, or "servo_<id>" when
// the ID is outside the named body map.
func ServoName(id int) string {
	if name, ok := servoNames[id]; ok {
		return name
	}
	return "servo_" + strconv.Itoa(id)
}
