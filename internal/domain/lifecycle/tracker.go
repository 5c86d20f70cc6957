// Пакет lifecycle — конечный автомат жизненного цикла файла.
//
// Состояния: absent → pending → present → deleting → absent.
// Дополнительно разрешены:
//   - absent → present: файл обнаружен в директории без загрузки через API
//   - absent → deleting: удаление файла, о котором процесс ещё не знал (после рестарта)
//   - pending → absent: загрузка не завершилась
//   - present → absent: файл исчез из директории
//
// Переход в deleting выполняется ровно один раз: повторная попытка
// возвращает TransitionError. На этом держится однократное удаление
// файлов с deleteOnDownload.
//
// Потокобезопасен через sync.Mutex.
package lifecycle

import (
	"fmt"
	"sync"
)

// State — состояние файла.
type State string

const (
	// Absent — файла нет (или процесс о нём не знает)
	Absent State = "absent"
	// Pending — файл сохраняется, метаданные ещё не записаны
	Pending State = "pending"
	// Present — файл и метаданные согласованы
	Present State = "present"
	// Deleting — файл удаляется
	Deleting State = "deleting"
)

// validTransitions — матрица допустимых переходов.
var validTransitions = map[State]map[State]bool{
	Absent:   {Pending: true, Present: true, Deleting: true},
	Pending:  {Present: true, Absent: true},
	Present:  {Deleting: true, Absent: true},
	Deleting: {Absent: true},
}

// Tracker хранит состояние каждого известного файла.
// Файлы в состоянии Absent не хранятся.
type Tracker struct {
	mu     sync.Mutex
	states map[string]State
}

// NewTracker создаёт пустой трекер.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]State)}
}

// State возвращает текущее состояние файла.
func (t *Tracker) State(filename string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked(filename)
}

// CanTransitionTo проверяет, допустим ли переход файла в target.
func (t *Tracker) CanTransitionTo(filename string, target State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return validTransitions[t.stateLocked(filename)][target]
}

// TransitionTo выполняет переход файла в target.
// Ошибка INVALID_TRANSITION — переход недопустим из текущего состояния.
func (t *Tracker) TransitionTo(filename string, target State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isValidState(target) {
		return &TransitionError{
			Code:     "INVALID_STATE",
			Filename: filename,
			Message:  fmt.Sprintf("недопустимое состояние: %q", target),
		}
	}

	current := t.stateLocked(filename)
	if !validTransitions[current][target] {
		return &TransitionError{
			Code:     "INVALID_TRANSITION",
			Filename: filename,
			Message:  fmt.Sprintf("переход %s → %s недопустим", current, target),
		}
	}

	t.setLocked(filename, target)
	return nil
}

// Forget переводит файл в Absent без проверки перехода.
// Используется, когда файл исчез из директории независимо от процесса.
func (t *Tracker) Forget(filename string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, filename)
}

// size — количество файлов не в состоянии Absent.
func (t *Tracker) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}

func (t *Tracker) stateLocked(filename string) State {
	if s, ok := t.states[filename]; ok {
		return s
	}
	return Absent
}

func (t *Tracker) setLocked(filename string, s State) {
	if s == Absent {
		delete(t.states, filename)
		return
	}
	t.states[filename] = s
}

// TransitionError — ошибка перехода между состояниями.
type TransitionError struct {
	Code     string // Машиночитаемый код (INVALID_TRANSITION, INVALID_STATE)
	Filename string
	Message  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Filename, e.Message)
}

func isValidState(s State) bool {
	switch s {
	case Absent, Pending, Present, Deleting:
		return true
	default:
		return false
	}
}
