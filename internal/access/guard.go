// Package access содержит guard авторизации: чистые предикаты без побочных
// эффектов, решающие права просмотра/редактирования/согласования оценки.
// Guard получает актора с уже разрешённым набором ролей и никогда не ходит
// в хранилище сам.
package access

import "assessment-service/internal/domain"

// CanView решает, вправе ли актор видеть оценку.
// Правила проверяются по порядку, первое совпадение выигрывает:
// административные роли видят всё; оценщик видит свою работу;
// для self-оценки сотрудник видит собственную запись;
// менеджер видит записи сотрудников своего департамента.
func CanView(actor domain.Actor, a domain.Assessment, subject domain.Employee) bool {
	if actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return true
	}

	if actor.ID == a.AssessorID {
		return true
	}

	if a.Type == domain.AssessmentTypeSelf && actor.ID == a.EmployeeID {
		return true
	}

	if actor.HasRole(domain.RoleManager) &&
		actor.DepartmentID != "" &&
		actor.DepartmentID == subject.DepartmentID {
		return true
	}

	return false
}

// CanEdit решает, вправе ли актор редактировать оценку.
// Редактирование возможно только в статусе draft. Для self-оценки правит
// сам сотрудник: assessor_id там — алиас его же учётной записи, поэтому
// ветвимся по типу до проверки ролей.
func CanEdit(actor domain.Actor, a domain.Assessment) bool {
	if a.Status != domain.AssessmentStatusDraft {
		return false
	}

	if a.Type == domain.AssessmentTypeSelf {
		return actor.ID == a.EmployeeID
	}

	if actor.ID == a.AssessorID {
		return true
	}

	return actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR)
}

// CanCreate решает, вправе ли актор завести оценку. Отличие от CanEdit —
// self-оценку могут создавать и административные роли от имени сотрудника,
// иначе пакетное наполнение цикла self-оценками невозможно. Правит такой
// черновик дальше всё равно только сам сотрудник.
func CanCreate(actor domain.Actor, a domain.Assessment) bool {
	if a.Type == domain.AssessmentTypeSelf {
		return actor.ID == a.EmployeeID || actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR)
	}

	if actor.ID == a.AssessorID {
		return true
	}

	return actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR)
}

// CanApprove решает, вправе ли актор согласовать или отклонить оценку.
// Запрет self-approval абсолютен: оценщик не согласует свою работу
// независимо от ролей.
func CanApprove(actor domain.Actor, a domain.Assessment) bool {
	if a.Status != domain.AssessmentStatusSubmitted {
		return false
	}

	if actor.ID == a.AssessorID {
		return false
	}

	return actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR, domain.RoleManager)
}
