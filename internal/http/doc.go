// Package http provides HTTP handlers and middleware for the car wash
// operations API.
//
// The router exposes the following endpoints:
//   - POST /login: authenticates {"email","password"} and records the current
//     session. POST /signup registers a pending account. Both are public;
//     every other route requires an active session.
//   - POST /logout and GET /me manage the recorded session.
//   - GET /users, POST /users, PUT /users/{id}, DELETE /users/{id}: the staff
//     directory, scoped by the acting role. POST /users/{id}/approve and
//     POST /users/{id}/deny drive the approval queue.
//   - GET /users/{id}/assignments: one employee's assignments joined against
//     the task library and sorted by due date.
//   - GET /tasks, POST /tasks, PUT /tasks/{id}, DELETE /tasks/{id}: the
//     shared task library. System-seeded tasks reject deletion.
//   - POST /assignments, PUT /assignments/{id}/status,
//     DELETE /assignments/{id}, GET /assignments/sheets: assignment
//     management and the grouped printable view.
//   - GET /shifts, POST /shifts, PUT /shifts/{id}, PUT /shifts/{id}/window,
//     DELETE /shifts/{id}: the weekly calendar. GET /templates and
//     POST /templates/apply expand schedule templates over a week.
//   - GET /export/assignment-sheets.pdf streams the printable PDF;
//     POST /export/assignment-sheets/share writes it to the export directory
//     and copies a text summary to the clipboard.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
