package middleware

import "lms/models"

// Authorization gate. Pure predicates over already-loaded records; each
// controller calls the relevant predicate after confirming the resource
// exists and before any mutation. A false result maps to 403.

// CanManageCourse allows the course's owning instructor.
func CanManageCourse(actor models.User, course models.Course) bool {
	return actor.ID == course.InstructorID
}

// CanGradeOrManageAssignment allows the instructor snapshotted on the
// assignment at creation time. The live course row is deliberately not
// consulted.
func CanGradeOrManageAssignment(actor models.User, assignment models.Assignment) bool {
	return actor.ID == assignment.InstructorID
}

// CanViewCourseContent allows the owning instructor and enrolled students.
func CanViewCourseContent(actor models.User, course models.Course, enrolled bool) bool {
	return actor.ID == course.InstructorID || enrolled
}

// CanSubmit allows enrolled students only.
func CanSubmit(actor models.User, enrolled bool) bool {
	return actor.Role == models.RoleStudent && enrolled
}
