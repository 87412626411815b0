package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
  "github.com/dentiqcloud/dentiq-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "dentiq", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  serviceLog.Info("Connecting to Postgres...")
  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    serviceLog.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.Clinic{},
    &types.ClinicMember{},
    &types.Patient{},
    &types.CbctRecord{},
    &types.CbctImage{},
    &types.AIOutput{},
    &types.Diagnosis{},
    &types.Tag{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }

  s.log.Info("Configuring foreign key relationships for postgres tables...")
  constraints := []string{
    `ALTER TABLE "clinic_member" DROP CONSTRAINT IF EXISTS "fk_clinic_member_clinic_id";
     ALTER TABLE "clinic_member" ADD CONSTRAINT "fk_clinic_member_clinic_id"
     FOREIGN KEY ("clinic_id") REFERENCES "clinic"("id") ON DELETE CASCADE`,
    `ALTER TABLE "clinic_member" DROP CONSTRAINT IF EXISTS "fk_clinic_member_user_id";
     ALTER TABLE "clinic_member" ADD CONSTRAINT "fk_clinic_member_user_id"
     FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
    `ALTER TABLE "patient" DROP CONSTRAINT IF EXISTS "fk_patient_clinic_id";
     ALTER TABLE "patient" ADD CONSTRAINT "fk_patient_clinic_id"
     FOREIGN KEY ("clinic_id") REFERENCES "clinic"("id") ON DELETE CASCADE`,
    `ALTER TABLE "cbct_record" DROP CONSTRAINT IF EXISTS "fk_cbct_record_patient_id";
     ALTER TABLE "cbct_record" ADD CONSTRAINT "fk_cbct_record_patient_id"
     FOREIGN KEY ("patient_id") REFERENCES "patient"("id") ON DELETE CASCADE`,
    `ALTER TABLE "cbct_image" DROP CONSTRAINT IF EXISTS "fk_cbct_image_record_id";
     ALTER TABLE "cbct_image" ADD CONSTRAINT "fk_cbct_image_record_id"
     FOREIGN KEY ("record_id") REFERENCES "cbct_record"("id") ON DELETE CASCADE`,
    `ALTER TABLE "ai_output" DROP CONSTRAINT IF EXISTS "fk_ai_output_record_id";
     ALTER TABLE "ai_output" ADD CONSTRAINT "fk_ai_output_record_id"
     FOREIGN KEY ("record_id") REFERENCES "cbct_record"("id") ON DELETE CASCADE`,
    `ALTER TABLE "diagnosis" DROP CONSTRAINT IF EXISTS "fk_diagnosis_patient_id";
     ALTER TABLE "diagnosis" ADD CONSTRAINT "fk_diagnosis_patient_id"
     FOREIGN KEY ("patient_id") REFERENCES "patient"("id") ON DELETE CASCADE`,
    `ALTER TABLE "diagnosis" DROP CONSTRAINT IF EXISTS "fk_diagnosis_doctor_id";
     ALTER TABLE "diagnosis" ADD CONSTRAINT "fk_diagnosis_doctor_id"
     FOREIGN KEY ("doctor_id") REFERENCES "user"("id") ON DELETE CASCADE`,
  }
  for _, ddl := range constraints {
    if err := s.db.Exec(ddl).Error; err != nil {
      s.log.Error("Failed to configure foreign key", "error", err)
      return fmt.Errorf("Failed to configure foreign key: %w", err)
    }
  }
  return nil
}
