package handlers_test

import (
	"net/http"
	"testing"

	"clinic-dashboard-server/internal/client"
	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/models"
)

func TestSignupAndMyAccount(t *testing.T) {
	ts, _ := newTestServer(t)

	c, err := client.New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	created, apiErr := c.Signup(client.SignupRequest{
		FirstName: "Nora",
		LastName:  "Newman",
		Email:     "nora@clinic.test",
		Password:  "a-long-password",
		Gender:    "Female",
	})
	if apiErr != nil {
		t.Fatalf("signup: %v", apiErr)
	}
	if created.Role != models.RolePatient {
		t.Fatalf("signup role = %q, signups must always be patients", created.Role)
	}

	// Duplicate email is refused.
	if _, apiErr := c.Signup(client.SignupRequest{
		FirstName: "Nora", LastName: "Again", Email: "nora@clinic.test", Password: "a-long-password",
	}); apiErr == nil {
		t.Fatal("duplicate signup succeeded")
	}

	if _, apiErr := c.Login("nora@clinic.test", "a-long-password"); apiErr != nil {
		t.Fatalf("login after signup: %v", apiErr)
	}
	me, apiErr := c.MyAccount()
	if apiErr != nil {
		t.Fatalf("my account: %v", apiErr)
	}
	if me.ID != created.ID || me.Email != "nora@clinic.test" {
		t.Fatalf("my account = %+v, want the signed-up user", me)
	}
}

func TestListPatientsFilters(t *testing.T) {
	ts, db := newTestServer(t)

	seedUser(t, db, models.RoleAdmin, "admin@clinic.test", "Ada", "Admin")
	a := seedUser(t, db, models.RolePatient, "a@clinic.test", "Alba", "Araya")
	b := seedUser(t, db, models.RolePatient, "b@clinic.test", "Bea", "Bruno")
	c := seedUser(t, db, models.RolePatient, "c@clinic.test", "Cai", "Chen")
	db.Model(&a).Updates(map[string]interface{}{"gender": "Female", "marital_status": "Single"})
	db.Model(&b).Updates(map[string]interface{}{"gender": "Female", "marital_status": "Married"})
	db.Model(&c).Updates(map[string]interface{}{"gender": "Male", "marital_status": "Single"})

	adminClient := loginAs(t, ts, "admin@clinic.test")

	page, apiErr := adminClient.ListPatients(nil, "", 1)
	if apiErr != nil {
		t.Fatalf("list patients: %v", apiErr)
	}
	if page.Total != 3 {
		t.Fatalf("patients total = %d, want 3", page.Total)
	}

	page, apiErr = adminClient.ListPatients(listquery.FilterSet{
		listquery.FilterGender: {"Female"},
	}, "", 1)
	if apiErr != nil {
		t.Fatalf("gender filter: %v", apiErr)
	}
	if page.Total != 2 {
		t.Fatalf("female patients = %d, want 2", page.Total)
	}

	page, apiErr = adminClient.ListPatients(listquery.FilterSet{
		listquery.FilterGender:        {"Female"},
		listquery.FilterMaritalStatus: {"Married"},
	}, "", 1)
	if apiErr != nil {
		t.Fatalf("combined filter: %v", apiErr)
	}
	if page.Total != 1 || page.Data[0].ID != b.ID {
		t.Fatalf("combined filter hit %d rows, want exactly Bea", page.Total)
	}

	page, apiErr = adminClient.ListPatients(nil, "chen", 1)
	if apiErr != nil {
		t.Fatalf("search: %v", apiErr)
	}
	if page.Total != 1 || page.Data[0].ID != c.ID {
		t.Fatalf("search hit %d rows, want exactly Cai Chen", page.Total)
	}

	// The patient tables are admin-only.
	patientClient := loginAs(t, ts, "a@clinic.test")
	if _, apiErr := patientClient.ListPatients(nil, "", 1); apiErr == nil || apiErr.Status != http.StatusForbidden {
		t.Fatalf("patient listing patients = %v, want 403", apiErr)
	}
}

func TestStaffManagement(t *testing.T) {
	ts, db := newTestServer(t)

	seedUser(t, db, models.RoleAdmin, "admin@clinic.test", "Ada", "Admin")
	adminClient := loginAs(t, ts, "admin@clinic.test")

	doctor, apiErr := adminClient.CreateStaff(client.StaffRequest{
		FirstName:      "Dina",
		LastName:       "Doktor",
		Email:          "dina@clinic.test",
		Password:       "a-long-password",
		Role:           models.RoleDoctor,
		Specialization: "Cardiology",
		Schedule:       "Mon-Fri 9:00-17:00",
	})
	if apiErr != nil {
		t.Fatalf("create doctor: %v", apiErr)
	}
	if doctor.Role != models.RoleDoctor {
		t.Fatalf("created role = %q, want doctor", doctor.Role)
	}

	// Patients cannot be created through the staff endpoint.
	if _, apiErr := adminClient.CreateStaff(client.StaffRequest{
		FirstName: "Pat", LastName: "Ient", Email: "p@clinic.test",
		Password: "a-long-password", Role: models.RolePatient,
	}); apiErr == nil || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("staff endpoint accepted a patient role: %v", apiErr)
	}

	doctors, apiErr := adminClient.ListDoctors("", 1)
	if apiErr != nil {
		t.Fatalf("list doctors: %v", apiErr)
	}
	if doctors.Total != 1 || doctors.Data[0].ID != doctor.ID {
		t.Fatalf("doctors page = %+v, want only Dina", doctors)
	}

	schedules, apiErr := adminClient.ListDoctorSchedules(1)
	if apiErr != nil {
		t.Fatalf("list schedules: %v", apiErr)
	}
	if schedules.Total != 1 {
		t.Fatalf("schedules total = %d, want 1", schedules.Total)
	}

	updated, apiErr := adminClient.UpdateUser(doctor.ID, client.ProfileUpdate{Specialization: "Oncology"})
	if apiErr != nil {
		t.Fatalf("update doctor: %v", apiErr)
	}
	if updated.Specialization != "Oncology" {
		t.Fatalf("specialization = %q, want Oncology", updated.Specialization)
	}

	if apiErr := adminClient.DeleteUser(doctor.ID); apiErr != nil {
		t.Fatalf("delete doctor: %v", apiErr)
	}
	doctors, apiErr = adminClient.ListDoctors("", 1)
	if apiErr != nil {
		t.Fatalf("list after delete: %v", apiErr)
	}
	if doctors.Total != 0 {
		t.Fatalf("doctors after delete = %d, want 0", doctors.Total)
	}
}

func TestDoctorSchedulesOmitUnscheduledDoctors(t *testing.T) {
	ts, db := newTestServer(t)

	seedUser(t, db, models.RoleAdmin, "admin@clinic.test", "Ada", "Admin")
	scheduled := seedUser(t, db, models.RoleDoctor, "dora@clinic.test", "Dora", "Doctor")
	seedUser(t, db, models.RoleDoctor, "newhire@clinic.test", "Nina", "Newhire")
	if err := db.Model(&scheduled).Update("schedule", "Mon-Wed 8:00-12:00").Error; err != nil {
		t.Fatalf("set schedule: %v", err)
	}

	schedules, apiErr := loginAs(t, ts, "admin@clinic.test").ListDoctorSchedules(1)
	if apiErr != nil {
		t.Fatalf("list schedules: %v", apiErr)
	}
	if schedules.Total != 1 || schedules.Data[0].ID != scheduled.ID {
		t.Fatalf("schedules page = %+v, want only the scheduled doctor", schedules)
	}
}

func TestChangePassword(t *testing.T) {
	ts, db := newTestServer(t)

	user := seedUser(t, db, models.RolePatient, "pat@clinic.test", "Pia", "Patient")
	other := seedUser(t, db, models.RolePatient, "other@clinic.test", "Otto", "Other")

	c := loginAs(t, ts, "pat@clinic.test")

	if apiErr := c.ChangePassword(other.ID, testPassword, "another-password"); apiErr == nil || apiErr.Status != http.StatusForbidden {
		t.Fatalf("changed someone else's password: %v", apiErr)
	}
	if apiErr := c.ChangePassword(user.ID, "wrong-current", "another-password"); apiErr == nil {
		t.Fatal("changed password with wrong current password")
	}
	if apiErr := c.ChangePassword(user.ID, testPassword, "another-password"); apiErr != nil {
		t.Fatalf("change password: %v", apiErr)
	}

	fresh, err := client.New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, apiErr := fresh.Login("pat@clinic.test", testPassword); apiErr == nil {
		t.Fatal("old password still works")
	}
	if _, apiErr := fresh.Login("pat@clinic.test", "another-password"); apiErr != nil {
		t.Fatalf("login with new password: %v", apiErr)
	}
}
